package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"cratedig/internal/config"
	"cratedig/internal/daemon"
	"cratedig/internal/library"
	"cratedig/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return
	}

	extractor, svc := buildExtractor(ctx, cfg, store, logger)

	d, err := daemon.New(cfg, store, extractor, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	server, err := buildDashboard(cfg, store, d, svc, logger)
	if err != nil {
		logger.Error("create dashboard server", logging.Error(err))
		return
	}
	if err := server.Start(ctx); err != nil {
		logger.Error("start dashboard server", logging.Error(err))
		return
	}
	defer server.Stop()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("cratedigd shutting down")
}
