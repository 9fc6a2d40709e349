package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"supportdesk/internal/config"
	"supportdesk/internal/db"
	"supportdesk/internal/logging"
	"supportdesk/internal/seed"
	"supportdesk/internal/store"
)

func main() {
	path := flag.String("file", "solutions.yaml", "YAML file with problem/solution pairs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "text", os.Stderr).Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := run(cfg, *path, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, path string, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	solutions, err := seed.LoadSolutions(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	gdb, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer db.Close(gdb)

	if err := store.New(gdb).CreateSolutions(context.Background(), solutions); err != nil {
		return err
	}
	log.Info("seeded solutions", "count", len(solutions), "path", path)
	return nil
}
