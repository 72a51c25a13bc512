package main

import (
	"flag"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/seed"
)

func main() {
	force := flag.Bool("force", false, "seed even when the backend already has categories")
	flag.Parse()

	cfg, logger := cli.Bootstrap(log.ComponentSeed)
	if cfg.DataBackend != config.BackendSQLite && cfg.DataBackend != config.BackendPostgres {
		logger.Error("Seeding needs a persistent backend", log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	ctx, cancel := cli.ShutdownContext()
	defer cancel()

	res := cli.MustOpenBackend(ctx, cfg, logger, false)
	defer cli.Close(logger, res)

	existing, err := res.Backend.ListCategories(ctx)
	if err != nil {
		logger.Error("Failed to inspect backend", log.FieldError, err)
		os.Exit(1)
	}
	if len(existing) > 0 && !*force {
		logger.Info("Backend already seeded, nothing to do", log.FieldCount, len(existing))
		return
	}

	start := time.Now()
	demo := seed.Demo(start)
	if err := seed.Load(ctx, res.Seeder, demo); err != nil {
		logger.Error("Seeding failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Demo data written",
		log.FieldBackend, cfg.DataBackend,
		log.FieldOperation, log.OpInsert,
		"users", len(demo.Users),
		"categories", len(demo.Categories),
		"transactions", len(demo.Transactions),
		"goals", len(demo.Goals),
		log.FieldDuration, time.Since(start).Milliseconds())
}
