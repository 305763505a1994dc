// Package main provides the worker command that discovers the auction
// publications of a date range and ingests them. It is the unit a
// scheduler runs daily.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/models"
	"github.com/zailushangde/AuctionProperty/internal/pipeline"
	"github.com/zailushangde/AuctionProperty/internal/shab"
	"github.com/zailushangde/AuctionProperty/internal/storage"
)

func main() {
	// 1. Define Command-Line Flags
	// ----------------------------
	configFile := flag.String("config", "", "Path to YAML configuration file")
	fromFlag := flag.String("from", "", "Start of the publication date range (YYYY-MM-DD), default yesterday")
	toFlag := flag.String("to", "", "End of the publication date range (YYYY-MM-DD), default today")

	flag.Parse()

	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	// 2. Load Configuration
	// ---------------------
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)

	from, to, err := dateRange(*fromFlag, *toFlag)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Invalid date range: %v", err))
		os.Exit(1)
	}

	if cfg.Database.URL == "" {
		log.Error("Please set DATABASE_URL or database.url in the config file")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("🚀 Starting auction publication worker")
	log.Info(fmt.Sprintf("📍 Source: %s", cfg.SHAB.BaseURL))
	log.Info(fmt.Sprintf("🗓  Range: %s to %s", from, to))
	log.Info(fmt.Sprintf("🎯 Database: %s", config.RedactDSN(cfg.Database.URL)))

	store, err := storage.NewPostgres(ctx, &cfg.Database, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Database connection failed: %v", err))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Error(fmt.Sprintf("❌ Schema setup failed: %v", err))
		os.Exit(1)
	}

	client := shab.NewClient(&cfg.SHAB, log)

	// 3. Discovery
	// ------------
	log.Info("Phase 1: Discovery (listing published auctions)...")

	listStart := time.Now()

	refs, err := client.ListPublications(ctx, from, to)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Listing failed: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Found %d publications in %v", len(refs), time.Since(listStart)))

	if len(refs) == 0 {
		log.Info("✨ Nothing to ingest")
		return
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}

	// 4. Ingestion
	// ------------
	log.Info("Phase 2: Ingestion (fetching, parsing, storing)...")

	pipe := pipeline.NewPipeline(client, store, pipeline.NewMetrics(), log)
	orchestrator := pipeline.NewOrchestrator(pipe, cfg.Pipeline, cfg.Retry, log)

	stats, runErr := orchestrator.Run(ctx, ids)

	printSummary(stats)

	if runErr != nil {
		log.Error(fmt.Sprintf("❌ Run stopped early: %v", runErr))
		os.Exit(1)
	}

	if stats.Errored == stats.Total {
		log.Error("❌ All publications failed")
		os.Exit(1)
	}

	log.Info("✨ Worker run complete!")
}

// dateRange resolves the -from/-to flags, defaulting to yesterday..today.
func dateRange(fromFlag, toFlag string) (models.Date, models.Date, error) {
	today := models.DateOf(time.Now())
	from := today.AddDays(-1)
	to := today

	var err error
	if fromFlag != "" {
		if from, err = models.ParseDate(fromFlag); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}
	if toFlag != "" {
		if to, err = models.ParseDate(toFlag); err != nil {
			return models.Date{}, models.Date{}, err
		}
	}

	if to.Before(from) {
		return models.Date{}, models.Date{}, fmt.Errorf("end %s is before start %s", to, from)
	}

	return from, to, nil
}

func printSummary(stats *pipeline.Statistics) {
	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("Total:                  %d\n", stats.Total)
	fmt.Printf("Inserted:               %d\n", stats.Inserted)
	fmt.Printf("Skipped (duplicate):    %d\n", stats.SkippedDuplicate)
	fmt.Printf("Skipped (non-auction):  %d\n", stats.SkippedNonAuction)
	fmt.Printf("Errored:                %d\n", stats.Errored)
	fmt.Printf("Total Duration: %v\n", stats.Duration)

	if len(stats.Errors) > 0 {
		fmt.Printf("⚠️  Errors encountered: %d\n", len(stats.Errors))

		for _, e := range stats.Errors {
			fmt.Printf("  - %v\n", e)
		}
	}

	fmt.Println("------------------------------------------------")
}
