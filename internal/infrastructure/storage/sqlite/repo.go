package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"backpack/internal/application/port"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

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
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  method TEXT NOT NULL,
  path TEXT NOT NULL,
  query TEXT NOT NULL,
  status INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  error TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_requests_ts ON requests(ts_ms);
CREATE INDEX IF NOT EXISTS idx_requests_path ON requests(path);
`)
	return err
}

func (r *Repo) InsertRequest(ctx context.Context, rec port.RequestRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO requests(ts_ms, method, path, query, status, duration_ms, error, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.TsMs, rec.Method, rec.Path, rec.Query, rec.Status, rec.DurationMs, rec.Error, time.Now().UnixMilli())
	return err
}

// ListRecent 按时间倒序返回最近的请求记录
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]port.RequestRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts_ms, method, path, query, status, duration_ms, error
		FROM requests ORDER BY ts_ms DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []port.RequestRecord
	for rows.Next() {
		var rec port.RequestRecord
		if err := rows.Scan(&rec.TsMs, &rec.Method, &rec.Path, &rec.Query, &rec.Status, &rec.DurationMs, &rec.Error); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByStatus 统计某个路径各状态码出现次数
func (r *Repo) CountByStatus(ctx context.Context, path string) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM requests WHERE path=? GROUP BY status`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

var _ port.Journal = (*Repo)(nil)
