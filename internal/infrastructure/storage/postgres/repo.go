package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"backpack/internal/application/port"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS requests (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  method TEXT NOT NULL,
  path TEXT NOT NULL,
  query TEXT NOT NULL,
  status INTEGER NOT NULL,
  duration_ms BIGINT NOT NULL,
  error TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_requests_ts ON requests(ts_ms);
`)
	return err
}

func (r *Repo) InsertRequest(ctx context.Context, rec port.RequestRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO requests(ts_ms, method, path, query, status, duration_ms, error) VALUES($1, $2, $3, $4, $5, $6, $7)`,
		rec.TsMs, rec.Method, rec.Path, rec.Query, rec.Status, rec.DurationMs, rec.Error)
	return err
}

var _ port.Journal = (*Repo)(nil)
