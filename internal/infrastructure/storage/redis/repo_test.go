package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"backpack/internal/application/port"
)

// captureHook answers every command locally and remembers its args, so the
// repo can be exercised without a server.
type captureHook struct {
	mu     sync.Mutex
	cmds   [][]any
	failOn string
}

func (h *captureHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (h *captureHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return h.capture(cmd)
	}
}

func (h *captureHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := h.capture(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (h *captureHook) capture(cmd redis.Cmder) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmds = append(h.cmds, append([]any(nil), cmd.Args()...))
	if h.failOn != "" && cmd.Name() == h.failOn {
		err := fmt.Errorf("%s refused", h.failOn)
		cmd.SetErr(err)
		return err
	}
	return nil
}

func (h *captureHook) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.cmds))
	for _, c := range h.cmds {
		out = append(out, fmt.Sprint(c[0]))
	}
	return out
}

func (h *captureHook) find(name string) []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.cmds {
		if fmt.Sprint(c[0]) == name {
			return c
		}
	}
	return nil
}

func newCapturedClient(t *testing.T) (*redis.Client, *captureHook) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	hook := &captureHook{}
	rdb.AddHook(hook)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, hook
}

func sampleRecord() port.RequestRecord {
	return port.RequestRecord{
		TsMs:       1700000000000,
		Method:     "POST",
		Path:       "/api/v1/order",
		Status:     400,
		DurationMs: 12,
		Error:      "",
	}
}

func TestNewDefaultsKeys(t *testing.T) {
	r := New(nil, "", time.Minute, 0)
	if r.stream != "backpack:requests" {
		t.Errorf("unexpected stream key %q", r.stream)
	}
	if r.streamChan != "backpack:requests:pub" {
		t.Errorf("unexpected channel %q", r.streamChan)
	}
	if r.keyStatus != "backpack:status" {
		t.Errorf("unexpected status key %q", r.keyStatus)
	}
	if r.maxLen != DefaultStreamMaxLen {
		t.Errorf("unexpected max len %d", r.maxLen)
	}

	r = New(nil, "bp-prod", 0, 500)
	if r.stream != "bp-prod:requests" {
		t.Errorf("unexpected stream key %q", r.stream)
	}
	if r.maxLen != 500 {
		t.Errorf("unexpected max len %d", r.maxLen)
	}
}

func TestStatusField(t *testing.T) {
	if got := StatusField("/api/v1/order", 400); got != "/api/v1/order:400" {
		t.Errorf("unexpected field %q", got)
	}
}

func TestInsertRequestWritesStreamCounterAndChannel(t *testing.T) {
	rdb, hook := newCapturedClient(t)
	repo := New(rdb, "bp", time.Hour, 1000)

	if err := repo.InsertRequest(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("InsertRequest: %v", err)
	}

	got := strings.Join(hook.names(), ",")
	if got != "xadd,hincrby,expire,publish" {
		t.Fatalf("unexpected command sequence %q", got)
	}

	xadd := hook.find("xadd")
	if len(xadd) < 6 {
		t.Fatalf("xadd too short: %v", xadd)
	}
	head := fmt.Sprint(xadd[:6]...)
	if want := fmt.Sprint("xadd", "bp:requests", "maxlen", "~", int64(1000), "*"); head != want {
		t.Errorf("xadd head = %q, want %q", head, want)
	}
	fields := map[string]string{}
	for i := 6; i+1 < len(xadd); i += 2 {
		fields[fmt.Sprint(xadd[i])] = fmt.Sprint(xadd[i+1])
	}
	if fields["path"] != "/api/v1/order" || fields["status"] != "400" || fields["method"] != "POST" {
		t.Errorf("unexpected stream fields %v", fields)
	}

	hincr := hook.find("hincrby")
	if fmt.Sprint(hincr[1:]...) != fmt.Sprint("bp:status", "/api/v1/order:400", int64(1)) {
		t.Errorf("unexpected hincrby args %v", hincr)
	}

	expire := hook.find("expire")
	if fmt.Sprint(expire[1:]...) != fmt.Sprint("bp:status", int64(3600)) {
		t.Errorf("unexpected expire args %v", expire)
	}

	publish := hook.find("publish")
	if publish[1] != "bp:requests:pub" {
		t.Errorf("unexpected channel %v", publish[1])
	}
	var rec port.RequestRecord
	if err := json.Unmarshal([]byte(fmt.Sprint(publish[2])), &rec); err != nil {
		t.Fatalf("published payload is not json: %v", err)
	}
	if rec != sampleRecord() {
		t.Errorf("published record = %+v", rec)
	}
}

func TestInsertRequestWithoutTTLSkipsExpire(t *testing.T) {
	rdb, hook := newCapturedClient(t)
	repo := New(rdb, "", 0, 0)

	if err := repo.InsertRequest(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("InsertRequest: %v", err)
	}
	if got := strings.Join(hook.names(), ","); got != "xadd,hincrby,publish" {
		t.Fatalf("unexpected command sequence %q", got)
	}
}

func TestInsertRequestStopsOnStreamError(t *testing.T) {
	rdb, hook := newCapturedClient(t)
	hook.failOn = "xadd"
	repo := New(rdb, "", time.Minute, 0)

	if err := repo.InsertRequest(context.Background(), sampleRecord()); err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Join(hook.names(), ","); got != "xadd" {
		t.Fatalf("unexpected command sequence %q", got)
	}
}
