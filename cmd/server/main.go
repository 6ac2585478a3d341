// Package main provides the entry point for the sqlpager HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
	"github.com/nnnkkk7/sqlpager/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close history store", zap.Error(err))
		}
	}()

	if err := app.Serve(ctx); err != nil {
		logger.Error("server failed", zap.Error(err))
	}
}
