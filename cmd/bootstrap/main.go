// Package main provides the bootstrap command for ingesting a fixed set of
// publication identifiers, typically used to seed a fresh database.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/pipeline"
	"github.com/zailushangde/AuctionProperty/internal/shab"
	"github.com/zailushangde/AuctionProperty/internal/storage"
)

func main() {
	// 1. Define Command-Line Flags
	// ----------------------------
	configFile := flag.String("config", "", "Path to YAML configuration file")
	idFile := flag.String("file", "", "File with one publication id per line, # starts a comment")
	batchSize := flag.Int("batch-size", 0, "Batch size override")
	batchDelay := flag.Int("batch-delay-ms", -1, "Inter-batch delay override in milliseconds")

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

	if *batchSize > 0 {
		cfg.Pipeline.BatchSize = *batchSize
	}
	if *batchDelay >= 0 {
		cfg.Pipeline.InterBatchDelayMs = *batchDelay
	}

	log := logger.NewLogger(cfg.Logging.Level)

	ids, err := collectIdentifiers(flag.Args(), *idFile)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to read identifiers: %v", err))
		os.Exit(1)
	}

	if len(ids) == 0 {
		log.Error("Please provide publication ids as arguments or with -file")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if cfg.Database.URL == "" {
		log.Error("Please set DATABASE_URL or database.url in the config file")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("🚀 Starting auction publication bootstrap")
	log.Info(fmt.Sprintf("📍 Source: %s", cfg.SHAB.BaseURL))
	log.Info(fmt.Sprintf("🎯 Database: %s", config.RedactDSN(cfg.Database.URL)))

	// 3. Connect Storage
	// ------------------
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

	// 4. Run the Pipeline
	// -------------------
	client := shab.NewClient(&cfg.SHAB, log)
	pipe := pipeline.NewPipeline(client, store, pipeline.NewMetrics(), log)
	orchestrator := pipeline.NewOrchestrator(pipe, cfg.Pipeline, cfg.Retry, log)

	log.Info(fmt.Sprintf("📦 Processing %d publications in batches of %d", len(ids), cfg.Pipeline.BatchSize))

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

	log.Info("✨ Bootstrap complete!")
}

// collectIdentifiers merges ids given as arguments with ids read from a
// file. File lines may carry comments after a # and blank lines are
// skipped.
func collectIdentifiers(args []string, path string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			ids = append(ids, arg)
		}
	}

	if path == "" {
		return ids, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ids, nil
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
