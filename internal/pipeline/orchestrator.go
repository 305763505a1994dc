package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zailushangde/AuctionProperty/internal/config"
	"github.com/zailushangde/AuctionProperty/internal/logger"
	"github.com/zailushangde/AuctionProperty/internal/shab"
)

// Statistics accumulates the outcome totals of one orchestrator run.
// Total is the number of identifiers the run was given; on a completed
// run it equals Inserted + SkippedDuplicate + SkippedNonAuction + Errored.
type Statistics struct {
	Total             int
	Inserted          int
	SkippedDuplicate  int
	SkippedNonAuction int
	Errored           int
	Errors            []error
	Duration          time.Duration
}

// Summary renders the one-line form printed by the commands.
func (s *Statistics) Summary() string {
	return fmt.Sprintf("processed %d publications: %d inserted, %d duplicates skipped, %d non-auctions skipped, %d errored in %s",
		s.Total, s.Inserted, s.SkippedDuplicate, s.SkippedNonAuction, s.Errored,
		s.Duration.Round(time.Millisecond))
}

// Orchestrator runs identifier sets through a Pipeline in fixed-size
// batches with bounded concurrency.
type Orchestrator struct {
	pipeline *Pipeline
	cfg      config.PipelineConfig
	retry    config.RetryPolicy
	log      *logger.Logger
}

func NewOrchestrator(p *Pipeline, cfg config.PipelineConfig, retry config.RetryPolicy, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewNop()
	}

	return &Orchestrator{pipeline: p, cfg: cfg, retry: retry, log: log}
}

// Run processes the identifiers in batches. A failing identifier is
// recorded in the statistics and never stops the run. Cancellation stops
// scheduling new batches, waits for in-flight identifiers and returns the
// context error together with the partial statistics.
func (o *Orchestrator) Run(ctx context.Context, ids []string) (*Statistics, error) {
	start := time.Now()
	stats := &Statistics{Total: len(ids)}

	batchSize := o.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	var mu sync.Mutex
	record := func(outcome Outcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			stats.Errored++
			stats.Errors = append(stats.Errors, err)
		case outcome == OutcomeInserted:
			stats.Inserted++
		case outcome == OutcomeSkippedDuplicate:
			stats.SkippedDuplicate++
		case outcome == OutcomeSkippedNonAuction:
			stats.SkippedNonAuction++
		}
	}

	var runErr error
	for offset := 0; offset < len(ids); offset += batchSize {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		batch := ids[offset:min(offset+batchSize, len(ids))]
		o.log.Info("Processing batch",
			"from", offset+1, "to", offset+len(batch), "total", len(ids))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.cfg.EffectiveConcurrency())
		for _, id := range batch {
			id := id // per-iteration copy; required for go <1.22 semantics
			g.Go(func() error {
				outcome, err := o.ingestWithRetry(gctx, id)
				if err != nil {
					o.log.Error("Publication failed", "publication_id", id, "error", err)
				}
				record(outcome, err)
				// Failures are per identifier; returning them would
				// cancel the rest of the batch.
				return nil
			})
		}
		_ = g.Wait()

		if offset+batchSize < len(ids) && o.cfg.GetInterBatchDelay() > 0 {
			select {
			case <-ctx.Done():
				runErr = ctx.Err()
			case <-time.After(o.cfg.GetInterBatchDelay()):
			}
			if runErr != nil {
				break
			}
		}
	}

	stats.Duration = time.Since(start)
	if runErr != nil {
		o.log.Warn("Run stopped early", "error", runErr, "processed",
			stats.Inserted+stats.SkippedDuplicate+stats.SkippedNonAuction+stats.Errored, "total", stats.Total)
		return stats, runErr
	}
	return stats, nil
}

// ingestWithRetry retries transient fetch failures per the retry policy.
// Anything that is not a retryable fetch error fails immediately.
func (o *Orchestrator) ingestWithRetry(ctx context.Context, id string) (Outcome, error) {
	maxAttempts := o.retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome, err := o.pipeline.Ingest(ctx, id)
		if err == nil {
			return outcome, nil
		}
		lastErr = err

		if attempt == maxAttempts || !shab.IsRetryable(err) {
			break
		}

		o.pipeline.metrics.IncrementRetry()
		delay := o.retry.GetRetryDelay(attempt)
		o.log.Warn("Transient failure, retrying",
			"publication_id", id, "attempt", attempt, "max_attempts", maxAttempts,
			"delay", delay, "error", err)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return OutcomeError, lastErr
			case <-time.After(delay):
			}
		}
	}
	return OutcomeError, lastErr
}
