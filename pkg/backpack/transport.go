package backpack

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Transport is the HTTP capability the client calls into. Implementations
// must be safe for concurrent use and must return non-2xx responses as
// responses, not errors.
type Transport interface {
	Request(ctx context.Context, method, rawURL string, header http.Header, params url.Values, body any) (*http.Response, error)
	Close() error
}

// HTTPTransportConfig tunes the default net/http based transport.
type HTTPTransportConfig struct {
	ProxyURL           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// HTTPTransport 封装共享的 *http.Client（连接池）
type HTTPTransport struct {
	client    *http.Client
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewHTTPTransport creates a transport with its own connection pool.
func NewHTTPTransport(cfg HTTPTransportConfig) (*HTTPTransport, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil || proxy.Scheme == "" || proxy.Host == "" {
			return nil, fmt.Errorf("%w: invalid proxy url %q", ErrConfiguration, cfg.ProxyURL)
		}
		base.Proxy = http.ProxyURL(proxy)
	} else {
		base.Proxy = nil
	}
	if cfg.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPTransport{
		client: &http.Client{
			Transport: base,
			Timeout:   timeout,
		},
	}, nil
}

// Request sends one request. body, when non-nil, is JSON encoded.
func (t *HTTPTransport) Request(ctx context.Context, method, rawURL string, header http.Header, params url.Values, body any) (*http.Response, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	endpoint := rawURL
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, rawURL, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("url", rawURL).Dur("elapsed", time.Since(start)).Msg("backpack request failed")
		return nil, err
	}
	log.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backpack request")
	return resp, nil
}

// Close releases idle pooled connections. Only the first call has effect.
func (t *HTTPTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		t.client.CloseIdleConnections()
	})
	return nil
}

// HTTPClient exposes the underlying client (mainly for proxy/TLS inspection).
func (t *HTTPTransport) HTTPClient() *http.Client {
	return t.client
}
