package port

import "context"

// RequestRecord 一次 REST 往返的审计记录
type RequestRecord struct {
	TsMs       int64  `json:"ts_ms"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Query      string `json:"query"`
	Status     int    `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type Journal interface {
	// InsertRequest appends one record.
	InsertRequest(ctx context.Context, rec RequestRecord) error

	// Connection management
	Close() error
}
