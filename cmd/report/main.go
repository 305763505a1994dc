// Package main provides the report command that prints a daily summary of
// ingested publications and upcoming auctions.
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
	"github.com/zailushangde/AuctionProperty/internal/models"
	"github.com/zailushangde/AuctionProperty/internal/report"
	"github.com/zailushangde/AuctionProperty/internal/storage"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	dayFlag := flag.String("day", "", "Day to report on (YYYY-MM-DD), default today")

	flag.Parse()

	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)

	day := models.DateOf(time.Now())
	if *dayFlag != "" {
		if day, err = models.ParseDate(*dayFlag); err != nil {
			log.Error(fmt.Sprintf("❌ Invalid day: %v", err))
			os.Exit(1)
		}
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

	r, err := report.Generate(ctx, store, day.Time())
	if err != nil {
		log.Error(fmt.Sprintf("❌ Report generation failed: %v", err))
		os.Exit(1)
	}

	if err := report.Render(os.Stdout, r); err != nil {
		log.Error(fmt.Sprintf("❌ Report rendering failed: %v", err))
		os.Exit(1)
	}
}
