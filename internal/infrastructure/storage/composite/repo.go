package composite

import (
	"context"

	"backpack/internal/application/port"
)

type Repo struct {
	repos []port.Journal
}

func New(repos ...port.Journal) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Journal, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

// Len reports how many backends are attached.
func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) InsertRequest(ctx context.Context, rec port.RequestRecord) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.InsertRequest(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close does not close the backends; their owner does.
func (r *Repo) Close() error { return nil }

var _ port.Journal = (*Repo)(nil)
