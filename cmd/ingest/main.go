// Package main provides the ingest command for debugging a single
// publication: fetch, classify, parse and print, optionally store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/models"
	"github.com/zailushangde/AuctionProperty/internal/shab"
	"github.com/zailushangde/AuctionProperty/internal/storage"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	dryRun := flag.Bool("dry-run", false, "Parse and print without writing to the database")

	flag.Parse()

	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)

	if flag.NArg() != 1 {
		log.Error("Please provide exactly one publication id")
		flag.PrintDefaults()
		os.Exit(1)
	}
	publicationID := flag.Arg(0)

	ctx := context.Background()
	client := shab.NewClient(&cfg.SHAB, log)

	log.Info(fmt.Sprintf("🔍 Fetching publication %s", publicationID))

	rawXML, err := client.FetchXML(ctx, publicationID)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Fetch failed: %v", err))
		os.Exit(1)
	}
	log.Info(fmt.Sprintf("✅ Fetched %d bytes", len(rawXML)))

	kind, err := shab.Classify(rawXML)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Classification failed: %v", err))
		os.Exit(1)
	}
	if kind != models.TypeAuction {
		log.Info(fmt.Sprintf("ℹ️  Publication is %s, not an auction. Nothing to do.", kind))
		return
	}

	pub, err := shab.NewParser(log).Parse(rawXML, publicationID)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Parsing failed: %v", err))
		os.Exit(1)
	}

	if len(pub.Contacts) > 0 {
		detail, err := client.FetchContactJSON(ctx, publicationID)
		if err != nil {
			log.Warn(fmt.Sprintf("⚠️  Contact detail fetch failed: %v (keeping XML contact data)", err))
		} else {
			pub.Contacts = shab.MergeContacts(pub.Contacts, detail)
		}
	}

	out, err := json.MarshalIndent(pub, "", "  ")
	if err != nil {
		log.Error(fmt.Sprintf("❌ Encoding failed: %v", err))
		os.Exit(1)
	}
	fmt.Println(string(out))

	if *dryRun {
		log.Info("✨ Dry run, nothing stored")
		return
	}

	if cfg.Database.URL == "" {
		log.Error("Please set DATABASE_URL or database.url in the config file, or use -dry-run")
		os.Exit(1)
	}

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

	result, err := store.UpsertPublication(ctx, pub)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Store failed: %v", err))
		os.Exit(1)
	}

	switch result {
	case storage.SkippedDuplicate:
		log.Info("ℹ️  Publication was already stored")
	default:
		log.Info(fmt.Sprintf("✅ Stored publication with %d auctions, %d debtors, %d contacts",
			len(pub.Auctions), len(pub.Debtors), len(pub.Contacts)))
	}

	log.Info("✨ Done!")
}
