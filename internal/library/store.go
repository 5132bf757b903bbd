package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cratedig/internal/config"
	"cratedig/internal/musicapi"
)

// ErrPlaylistNotFound is returned when a playlist lookup has no match.
var ErrPlaylistNotFound = errors.New("playlist not found in library; run `cratedig sync` first")

// Store persists the synced playlist library in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the library database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.LibraryDBPath())
}

// OpenPath opens the library database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertPlaylist records playlist metadata and its sync time.
func (s *Store) UpsertPlaylist(ctx context.Context, pl musicapi.Playlist, syncedAt time.Time) error {
	if strings.TrimSpace(pl.ID) == "" {
		return errors.New("playlist id required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO playlists (id, name, owner, snapshot_id, collaborative, public, track_total, last_synced_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             owner = excluded.owner,
             snapshot_id = excluded.snapshot_id,
             collaborative = excluded.collaborative,
             public = excluded.public,
             track_total = excluded.track_total,
             last_synced_at = excluded.last_synced_at`,
		pl.ID, pl.Name, pl.Owner, pl.SnapshotID,
		boolToInt(pl.Collaborative), boolToInt(pl.Public), pl.TrackTotal,
		syncedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert playlist: %w", err)
	}
	return nil
}

// ReplaceTracks swaps the stored tracks of a playlist for the given set,
// preserving playlist order.
func (s *Store) ReplaceTracks(ctx context.Context, playlistID string, tracks []musicapi.Track) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tracks tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("clear playlist tracks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tracks (playlist_id, position, id, name, artists_json, album, album_id,
             duration_ms, popularity, track_number, explicit, added_at, features_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare track insert: %w", err)
	}
	defer stmt.Close()

	for position, track := range tracks {
		artistsJSON, err := json.Marshal(track.Artists)
		if err != nil {
			return fmt.Errorf("marshal artists: %w", err)
		}
		var featuresJSON any
		if track.Features != nil {
			data, err := json.Marshal(track.Features)
			if err != nil {
				return fmt.Errorf("marshal features: %w", err)
			}
			featuresJSON = string(data)
		}
		var addedAt any
		if !track.AddedAt.IsZero() {
			addedAt = track.AddedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			playlistID, position, track.ID, track.Name, string(artistsJSON),
			track.Album, track.AlbumID, track.DurationMS, track.Popularity,
			track.TrackNumber, boolToInt(track.Explicit), addedAt, featuresJSON,
		); err != nil {
			return fmt.Errorf("insert track %q: %w", track.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tracks: %w", err)
	}
	return nil
}

const playlistColumns = `id, name, owner, snapshot_id, collaborative, public, track_total, last_synced_at,
    (SELECT COUNT(1) FROM tracks t WHERE t.playlist_id = playlists.id) AS track_count`

// Playlists lists cached playlists ordered by name.
func (s *Store) Playlists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *pl)
	}
	return playlists, rows.Err()
}

// GetPlaylist fetches a cached playlist by id. Returns ErrPlaylistNotFound
// when absent.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id)
	pl, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	return pl, err
}

// FindPlaylist resolves a playlist by exact id first, then by
// case-insensitive name.
func (s *Store) FindPlaylist(ctx context.Context, idOrName string) (*Playlist, error) {
	pl, err := s.GetPlaylist(ctx, idOrName)
	if err == nil {
		return pl, nil
	}
	if !errors.Is(err, ErrPlaylistNotFound) {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE name = ? COLLATE NOCASE
         ORDER BY last_synced_at DESC LIMIT 1`, idOrName)
	pl, err = scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrPlaylistNotFound, idOrName)
	}
	return pl, err
}

// Tracks returns the cached tracks of a playlist in playlist order.
func (s *Store) Tracks(ctx context.Context, playlistID string) ([]musicapi.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, artists_json, album, album_id, duration_ms, popularity,
                track_number, explicit, added_at, features_json
         FROM tracks WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []musicapi.Track
	for rows.Next() {
		var (
			track        musicapi.Track
			artistsJSON  string
			explicit     int
			addedAt      sql.NullString
			featuresJSON sql.NullString
		)
		if err := rows.Scan(&track.ID, &track.Name, &artistsJSON, &track.Album,
			&track.AlbumID, &track.DurationMS, &track.Popularity,
			&track.TrackNumber, &explicit, &addedAt, &featuresJSON); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		if err := json.Unmarshal([]byte(artistsJSON), &track.Artists); err != nil {
			return nil, fmt.Errorf("parse artists for %q: %w", track.ID, err)
		}
		track.Explicit = explicit != 0
		if addedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, addedAt.String); err == nil {
				track.AddedAt = ts
			}
		}
		if featuresJSON.Valid && featuresJSON.String != "" {
			var features musicapi.AudioFeatures
			if err := json.Unmarshal([]byte(featuresJSON.String), &features); err != nil {
				return nil, fmt.Errorf("parse features for %q: %w", track.ID, err)
			}
			track.Features = &features
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// PrunePlaylists removes cached playlists whose ids are not in keep. It is
// used after a full sync to drop playlists deleted upstream.
func (s *Store) PrunePlaylists(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		res, err := s.db.ExecContext(ctx, `DELETE FROM playlists`)
		if err != nil {
			return 0, fmt.Errorf("prune playlists: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := strings.Repeat("?,", len(keep))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keep))
	for i, id := range keep {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM playlists WHERE id NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("prune playlists: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports library-wide counts.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	row := s.db.QueryRowContext(ctx, `SELECT
        (SELECT COUNT(1) FROM playlists),
        (SELECT COUNT(1) FROM tracks),
        (SELECT COUNT(1) FROM tracks WHERE features_json IS NOT NULL),
        (SELECT MAX(last_synced_at) FROM playlists)`)
	var lastSynced sql.NullString
	if err := row.Scan(&stats.Playlists, &stats.Tracks, &stats.TracksWithFeatures, &lastSynced); err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	if lastSynced.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, lastSynced.String); err == nil {
			stats.LastSyncedAt = &ts
		}
	}
	return stats, nil
}

func scanPlaylist(row interface{ Scan(...any) error }) (*Playlist, error) {
	var (
		pl            Playlist
		collaborative int
		public        int
		lastSynced    sql.NullString
	)
	if err := row.Scan(&pl.ID, &pl.Name, &pl.Owner, &pl.SnapshotID,
		&collaborative, &public, &pl.TrackTotal, &lastSynced, &pl.TrackCount); err != nil {
		return nil, err
	}
	pl.Collaborative = collaborative != 0
	pl.Public = public != 0
	if lastSynced.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, lastSynced.String); err == nil {
			pl.LastSyncedAt = ts
		}
	}
	return &pl, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
