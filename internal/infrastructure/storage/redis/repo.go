package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"backpack/internal/application/port"

	"github.com/redis/go-redis/v9"
)

// DefaultStreamMaxLen caps the request stream (approximate trimming).
const DefaultStreamMaxLen int64 = 100_000

type Repo struct {
	rdb        *redis.Client
	prefix     string
	ttl        time.Duration
	maxLen     int64
	keyStatus  string // prefix + ":status"
	stream     string
	streamChan string
}

// New 创建 Redis 仓储；ttl 作用于状态计数 hash，maxLen<=0 使用 DefaultStreamMaxLen
func New(rdb *redis.Client, prefix string, ttl time.Duration, maxLen int64) *Repo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "backpack"
	}
	if maxLen <= 0 {
		maxLen = DefaultStreamMaxLen
	}
	return &Repo{
		rdb:        rdb,
		prefix:     prefix,
		ttl:        ttl,
		maxLen:     maxLen,
		keyStatus:  prefix + ":status",
		stream:     prefix + ":requests",
		streamChan: prefix + ":requests:pub",
	}
}

// StatusField 状态计数 hash 的字段名: "<path>:<status>"
func StatusField(path string, status int) string {
	return fmt.Sprintf("%s:%d", path, status)
}

func (r *Repo) InsertRequest(ctx context.Context, rec port.RequestRecord) error {
	// 1) Stream: XADD <prefix>:requests MAXLEN ~ n * ...
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"ts_ms":       rec.TsMs,
			"method":      rec.Method,
			"path":        rec.Path,
			"query":       rec.Query,
			"status":      rec.Status,
			"duration_ms": rec.DurationMs,
			"error":       rec.Error,
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) Hash: 按 path:status 计数
	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.keyStatus, StatusField(rec.Path, rec.Status), 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyStatus, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	// 3) PubSub: PUBLISH <channel> json
	b, _ := json.Marshal(rec)
	return r.rdb.Publish(ctx, r.streamChan, string(b)).Err()
}

// Close is a no-op: the client is owned by whoever created it.
func (r *Repo) Close() error { return nil }

var _ port.Journal = (*Repo)(nil)
