package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"cratedig/internal/config"
	"cratedig/internal/extract"
	"cratedig/internal/library"
	"cratedig/internal/logging"
)

// Daemon coordinates the long-running cratedigd process: it holds the
// single-instance lock and periodically refreshes the library from the music
// API.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *library.Store
	extractor *extract.Extractor

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	lastSync *extract.Report
	lastErr  error
}

// Status is a point-in-time view of the daemon.
type Status struct {
	Running       bool            `json:"running"`
	PID           int             `json:"pid"`
	LibraryDBPath string          `json:"libraryDbPath"`
	LockFilePath  string          `json:"lockFilePath"`
	LastSync      *extract.Report `json:"lastSync,omitempty"`
	LastSyncError string          `json:"lastSyncError,omitempty"`
}

// New builds a daemon. extractor may be nil when no API credentials are
// configured; the daemon then serves the existing library without syncing.
func New(cfg *config.Config, store *library.Store, extractor *extract.Extractor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon: config and store are required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		extractor: extractor,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the periodic sync loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cratedigd instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.running.Store(true)

	go d.syncLoop()

	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the sync loop and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	<-d.done
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases the library store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// SyncAll runs one sync and records the outcome. It also backs the dashboard
// sync endpoint.
func (d *Daemon) SyncAll(ctx context.Context, opts extract.Options) (*extract.Report, error) {
	if d.extractor == nil {
		return nil, errors.New("sync requires API credentials; run `cratedig login`")
	}
	report, err := d.extractor.SyncAll(ctx, opts)

	d.mu.Lock()
	if report != nil {
		d.lastSync = report
	}
	d.lastErr = err
	d.mu.Unlock()
	return report, err
}

// Status reports the daemon's current state.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		LibraryDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		LastSync:      d.lastSync,
	}
	if d.lastErr != nil {
		status.LastSyncError = d.lastErr.Error()
	}
	return status
}

// syncLoop refreshes the library on the configured interval. The first sync
// runs immediately on startup.
func (d *Daemon) syncLoop() {
	defer close(d.done)

	if d.extractor == nil {
		d.logger.Warn("no API credentials configured; periodic sync disabled")
		<-d.ctx.Done()
		return
	}

	interval := time.Duration(d.cfg.Sync.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.runScheduledSync()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.runScheduledSync()
		}
	}
}

func (d *Daemon) runScheduledSync() {
	report, err := d.SyncAll(d.ctx, extract.Options{Concurrency: d.cfg.Sync.Concurrency})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.logger.Error("scheduled sync failed", logging.Error(err))
		}
		return
	}
	d.logger.Info("scheduled sync finished",
		logging.String(logging.FieldRunID, report.RunID),
		logging.Int("synced", report.Synced),
		logging.Int("skipped", report.Skipped))
}
