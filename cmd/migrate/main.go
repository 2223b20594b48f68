package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	appconfig "github.com/leaseline/lease-concierge/internal/config"
	"github.com/leaseline/lease-concierge/internal/db"
	"github.com/leaseline/lease-concierge/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	down := flag.Bool("down", false, "roll back the most recent migration instead of migrating up")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	handle, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer handle.Close()

	if *down {
		if err := db.Rollback(handle); err != nil {
			logger.Error("rollback failed", "error", err)
			os.Exit(1)
		}
		logger.Info("rolled back one migration", "path", cfg.DatabasePath)
		return
	}

	if err := db.Migrate(handle); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "path", cfg.DatabasePath)
}
