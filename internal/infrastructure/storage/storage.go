package storage

import (
	"context"
	"sync"

	"backpack/internal/application/port"
)

// InMemoryJournal keeps request records in memory; used by tests and as a
// throwaway journal when no backend is configured.
type InMemoryJournal struct {
	mu      sync.Mutex
	records []port.RequestRecord
	err     error
}

// NewInMemoryJournal creates a new in-memory journal
func NewInMemoryJournal() *InMemoryJournal {
	return &InMemoryJournal{
		records: make([]port.RequestRecord, 0),
	}
}

// FailWith makes subsequent inserts record and then return err.
func (j *InMemoryJournal) FailWith(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
}

func (j *InMemoryJournal) InsertRequest(ctx context.Context, rec port.RequestRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return j.err
}

// Records returns a copy of everything recorded so far.
func (j *InMemoryJournal) Records() []port.RequestRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]port.RequestRecord, len(j.records))
	copy(out, j.records)
	return out
}

func (j *InMemoryJournal) Close() error {
	return nil
}

var _ port.Journal = (*InMemoryJournal)(nil)
