// Package pipeline turns publication identifiers into stored auction
// records. Pipeline is the per-identifier unit of work; Orchestrator runs
// identifier sets in bounded concurrent batches.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/models"
	"github.com/zailushangde/AuctionProperty/internal/shab"
	"github.com/zailushangde/AuctionProperty/internal/storage"
)

// Outcome classifies what processing one identifier did.
type Outcome string

const (
	OutcomeInserted          Outcome = "INSERTED"
	OutcomeSkippedDuplicate  Outcome = "SKIPPED_DUPLICATE"
	OutcomeSkippedNonAuction Outcome = "SKIPPED_NON_AUCTION"
	OutcomeError             Outcome = "ERROR"
)

// Fetcher is the slice of the SHAB client the pipeline needs.
type Fetcher interface {
	FetchXML(ctx context.Context, publicationID string) ([]byte, error)
	FetchContactJSON(ctx context.Context, publicationID string) (*shab.OfficeDetail, error)
}

// Pipeline processes a single publication identifier end to end.
type Pipeline struct {
	fetcher Fetcher
	parser  *shab.Parser
	store   storage.Store
	metrics *Metrics
	log     *logger.Logger
}

// NewPipeline creates a pipeline. metrics may be nil.
func NewPipeline(fetcher Fetcher, store storage.Store, metrics *Metrics, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}

	return &Pipeline{
		fetcher: fetcher,
		parser:  shab.NewParser(log),
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// Ingest fetches, classifies, parses, enriches and stores one
// publication. Non-auction publications and duplicates are skips, not
// errors; any returned error means the identifier must be counted as
// errored.
func (p *Pipeline) Ingest(ctx context.Context, publicationID string) (Outcome, error) {
	start := time.Now()
	outcome, err := p.ingest(ctx, publicationID)
	p.metrics.ObserveIngestLatency(time.Since(start))
	if err != nil {
		outcome = OutcomeError
	}
	p.metrics.IncrementOutcome(outcome)
	return outcome, err
}

func (p *Pipeline) ingest(ctx context.Context, publicationID string) (Outcome, error) {
	rawXML, err := p.fetcher.FetchXML(ctx, publicationID)
	if err != nil {
		return OutcomeError, fmt.Errorf("fetch publication %s: %w", publicationID, err)
	}

	kind, err := shab.Classify(rawXML)
	if err != nil {
		return OutcomeError, fmt.Errorf("classify publication %s: %w", publicationID, err)
	}
	if kind != models.TypeAuction {
		p.log.Debug("Skipping non-auction publication", "publication_id", publicationID, "type", string(kind))
		return OutcomeSkippedNonAuction, nil
	}

	pub, err := p.parser.Parse(rawXML, publicationID)
	if err != nil {
		return OutcomeError, fmt.Errorf("parse publication %s: %w", publicationID, err)
	}

	// Contact enrichment is best effort. The JSON detail endpoint being
	// down must not lose the publication.
	if len(pub.Contacts) > 0 {
		detail, err := p.fetcher.FetchContactJSON(ctx, publicationID)
		if err != nil {
			p.log.Warn("Contact detail fetch failed, keeping XML contact data",
				"publication_id", publicationID, "error", err)
		} else {
			pub.Contacts = shab.MergeContacts(pub.Contacts, detail)
		}
	}

	result, err := p.store.UpsertPublication(ctx, pub)
	if err != nil {
		return OutcomeError, fmt.Errorf("store publication %s: %w", publicationID, err)
	}
	if result == storage.SkippedDuplicate {
		p.log.Debug("Publication already stored", "publication_id", publicationID)
		return OutcomeSkippedDuplicate, nil
	}

	p.log.Info("Publication stored", "publication_id", publicationID,
		"auctions", len(pub.Auctions), "debtors", len(pub.Debtors), "contacts", len(pub.Contacts))
	return OutcomeInserted, nil
}
