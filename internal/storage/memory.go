package storage

import (
	"context"
	"sync"
	"time"

	"github.com/zailushangde/AuctionProperty/internal/models"
)

// Memory is an in-memory Store used by tests and dry runs. It mirrors the
// Postgres semantics for duplicates, purges and daily counts.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	pub        models.ParsedPublication
	insertedAt time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) UpsertPublication(ctx context.Context, pub *models.ParsedPublication) (UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[pub.ID]; ok {
		return SkippedDuplicate, nil
	}
	m.entries[pub.ID] = &memoryEntry{pub: *pub, insertedAt: m.now()}
	return Inserted, nil
}

func (m *Memory) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[id]
	return ok, nil
}

func (m *Memory) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, e := range m.entries {
		var kept []models.Auction
		for _, a := range e.pub.Auctions {
			if a.Date.Time().Before(olderThan) {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		e.pub.Auctions = kept
		if len(kept) == 0 {
			delete(m.entries, id)
		}
	}
	return removed, nil
}

func (m *Memory) DailyCounts(ctx context.Context, day time.Time) (*DailyCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, end := dayWindow(day)
	upcomingEnd := start.AddDate(0, 0, upcomingWindowDays)
	counts := &DailyCounts{Day: start, ByCanton: make(map[string]int)}

	for _, e := range m.entries {
		for _, a := range e.pub.Auctions {
			d := a.Date.Time()
			if !d.Before(start) && d.Before(upcomingEnd) {
				counts.UpcomingAuctions++
			}
		}
		if e.insertedAt.Before(start) || !e.insertedAt.Before(end) {
			continue
		}
		counts.NewPublications++
		counts.NewAuctions += len(e.pub.Auctions)
		for _, canton := range e.pub.Cantons {
			counts.ByCanton[canton]++
		}
	}
	return counts, nil
}

// Get returns a stored publication by id.
func (m *Memory) Get(id string) (*models.ParsedPublication, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	pub := e.pub
	return &pub, true
}

// Len returns the number of stored publications.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
