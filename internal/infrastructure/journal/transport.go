package journal

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"backpack/internal/application/port"
	"backpack/pkg/backpack"
)

// DefaultWriteTimeout bounds how long a request waits for its journal write.
const DefaultWriteTimeout = time.Second

// Transport 记录每次请求的装饰器；记录失败只打日志，不影响返回结果
type Transport struct {
	next         backpack.Transport
	journal      port.Journal
	now          func() time.Time
	writeTimeout time.Duration
}

func NewTransport(next backpack.Transport, j port.Journal) *Transport {
	return &Transport{next: next, journal: j, now: time.Now, writeTimeout: DefaultWriteTimeout}
}

func (t *Transport) Request(ctx context.Context, method, rawURL string, header http.Header, params url.Values, body any) (*http.Response, error) {
	start := t.now()
	resp, err := t.next.Request(ctx, method, rawURL, header, params, body)

	rec := port.RequestRecord{
		TsMs:       start.UnixMilli(),
		Method:     method,
		Path:       pathOf(rawURL),
		Query:      params.Encode(),
		DurationMs: t.now().Sub(start).Milliseconds(),
	}
	if resp != nil {
		rec.Status = resp.StatusCode
	}
	if err != nil {
		rec.Error = err.Error()
	}

	t.record(ctx, rec)
	return resp, err
}

// record writes rec on a detached context bounded by writeTimeout. The
// caller waits at most writeTimeout, and not at all once its own context
// is done; a slow insert then finishes in the background.
func (t *Transport) record(ctx context.Context, rec port.RequestRecord) {
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.writeTimeout)
	done := make(chan error, 1)
	go func() {
		defer cancel()
		done <- t.journal.InsertRequest(jctx, rec)
	}()

	timer := time.NewTimer(t.writeTimeout)
	defer timer.Stop()

	select {
	case jerr := <-done:
		if jerr != nil {
			log.Warn().Err(jerr).Str("method", rec.Method).Str("path", rec.Path).Msg("journal insert failed")
		}
	case <-timer.C:
		log.Warn().Str("method", rec.Method).Str("path", rec.Path).Dur("timeout", t.writeTimeout).Msg("journal insert timed out")
	case <-ctx.Done():
	}
}

func (t *Transport) Close() error {
	return t.next.Close()
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

var _ backpack.Transport = (*Transport)(nil)
