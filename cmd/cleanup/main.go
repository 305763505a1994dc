// Package main provides the cleanup command that purges auctions past the
// retention window together with publications left without auctions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/storage"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	retention := flag.Int("retention-days", 0, "Retention override in days")
	dryRun := flag.Bool("dry-run", false, "Print the cutoff without deleting anything")

	flag.Parse()

	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *retention > 0 {
		cfg.Cleanup.RetentionDays = *retention
	}

	log := logger.NewLogger(cfg.Logging.Level)

	now := time.Now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -cfg.Cleanup.RetentionDays)

	log.Info(fmt.Sprintf("🧹 Purging auctions dated before %s (%d days retention)",
		cutoff.Format("2006-01-02"), cfg.Cleanup.RetentionDays))

	if *dryRun {
		log.Info("✨ Dry run, nothing deleted")
		return
	}

	if cfg.Database.URL == "" {
		log.Error("Please set DATABASE_URL or database.url in the config file")
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := storage.NewPostgres(ctx, &cfg.Database, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Database connection failed: %v", err))
		os.Exit(1)
	}
	defer store.Close()

	removed, err := store.PurgeExpired(ctx, cutoff)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Purge failed: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Removed %d expired auctions", removed))
	log.Info("✨ Cleanup complete!")
}
