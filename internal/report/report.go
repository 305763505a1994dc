// Package report summarizes a day of ingestion activity for the console.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zailushangde/AuctionProperty/internal/storage"
)

// Source yields the aggregates a report is built from. *storage.Postgres
// and *storage.Memory both satisfy it.
type Source interface {
	DailyCounts(ctx context.Context, day time.Time) (*storage.DailyCounts, error)
}

// Report is one day of ingestion activity in presentation order.
type Report struct {
	Day              time.Time
	NewPublications  int
	NewAuctions      int
	UpcomingAuctions int
	ByCanton         []CantonCount
	GeneratedAt      time.Time
}

// CantonCount is the number of publications ingested for one canton.
type CantonCount struct {
	Canton string
	Count  int
}

// Generate collects the daily counts and orders the canton breakdown
// alphabetically so the rendered table is stable.
func Generate(ctx context.Context, src Source, day time.Time) (*Report, error) {
	counts, err := src.DailyCounts(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to collect daily counts: %w", err)
	}

	r := &Report{
		Day:              counts.Day,
		NewPublications:  counts.NewPublications,
		NewAuctions:      counts.NewAuctions,
		UpcomingAuctions: counts.UpcomingAuctions,
		GeneratedAt:      time.Now(),
	}

	for canton, n := range counts.ByCanton {
		r.ByCanton = append(r.ByCanton, CantonCount{Canton: canton, Count: n})
	}
	sort.Slice(r.ByCanton, func(i, j int) bool {
		return r.ByCanton[i].Canton < r.ByCanton[j].Canton
	})

	return r, nil
}
