// Package storage persists normalized auction publications to PostgreSQL
// and answers the aggregate queries behind reports and cleanup.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/zailushangde/AuctionProperty/internal/models"
)

// UpsertResult describes what UpsertPublication did with a publication.
type UpsertResult string

const (
	// Inserted means the full publication graph was written.
	Inserted UpsertResult = "INSERTED"

	// SkippedDuplicate means a publication with the same id already
	// existed and nothing was written.
	SkippedDuplicate UpsertResult = "SKIPPED_DUPLICATE"
)

// Store is the persistence boundary of the ingestion pipeline.
type Store interface {
	// UpsertPublication writes the publication together with its
	// auctions, auction objects, debtors and contacts in a single
	// transaction, or writes nothing at all. An id that is already
	// present yields SkippedDuplicate and leaves existing rows alone.
	UpsertPublication(ctx context.Context, pub *models.ParsedPublication) (UpsertResult, error)

	// Exists reports whether a publication id is already stored.
	Exists(ctx context.Context, id string) (bool, error)

	// PurgeExpired deletes auctions dated before olderThan and any
	// publications left without auctions. It returns the number of
	// auctions removed.
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)

	// DailyCounts aggregates ingestion activity for the calendar day
	// containing the given instant.
	DailyCounts(ctx context.Context, day time.Time) (*DailyCounts, error)
}

// upcomingWindowDays is the horizon used for the upcoming-auction count.
const upcomingWindowDays = 30

// DailyCounts is the raw material of the daily report.
type DailyCounts struct {
	Day              time.Time
	NewPublications  int
	NewAuctions      int
	UpcomingAuctions int
	ByCanton         map[string]int
}

// StorageError wraps a failed store operation with the publication it
// concerned, when known.
type StorageError struct {
	Op            string
	PublicationID string
	Err           error
}

func (e *StorageError) Error() string {
	if e.PublicationID != "" {
		return fmt.Sprintf("storage: %s for publication %s: %v", e.Op, e.PublicationID, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// dayWindow returns the half-open UTC day [start, end) containing t.
func dayWindow(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
