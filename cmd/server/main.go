// Package main is the entry point for the birthday board server.
//
// main stays minimal: read configuration, create the logger, ensure the data
// directory exists, hand everything to internal/server. All actual logic
// lives in the imported packages, which keeps the app testable and its
// components reusable.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/birthday-board/internal/config"
	"github.com/sakif/birthday-board/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The sqlite file lives under a data directory that may not exist yet
	// on first run. MkdirAll is a no-op when it already does.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	templateDir, _ := filepath.Abs("web/templates")

	srv, err := server.New(cfg, templateDir, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
