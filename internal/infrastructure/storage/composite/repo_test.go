package composite

import (
	"context"
	"errors"
	"testing"

	"backpack/internal/application/port"
)

type mockJournal struct {
	records []port.RequestRecord
	err     error
}

func (m *mockJournal) InsertRequest(ctx context.Context, rec port.RequestRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

func (m *mockJournal) Close() error { return nil }

func TestCompositeFansOut(t *testing.T) {
	a := &mockJournal{}
	b := &mockJournal{}
	repo := New(a, nil, b)

	if repo.Len() != 2 {
		t.Fatalf("expected nil backend filtered, got %d backends", repo.Len())
	}

	rec := port.RequestRecord{TsMs: 1, Method: "GET", Path: "/api/v1/ping", Status: 200}
	if err := repo.InsertRequest(context.Background(), rec); err != nil {
		t.Fatalf("InsertRequest failed: %v", err)
	}
	if len(a.records) != 1 || len(b.records) != 1 {
		t.Errorf("expected one record per backend, got %d and %d", len(a.records), len(b.records))
	}
}

func TestCompositeReturnsFirstError(t *testing.T) {
	first := errors.New("first")
	a := &mockJournal{err: first}
	b := &mockJournal{err: errors.New("second")}
	repo := New(a, b)

	err := repo.InsertRequest(context.Background(), port.RequestRecord{Path: "/api/v1/ping"})
	if !errors.Is(err, first) {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(b.records) != 1 {
		t.Errorf("second backend should still receive the record")
	}
}
