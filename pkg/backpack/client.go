package backpack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBaseURL is the production REST host.
const DefaultBaseURL = "https://api.backpack.exchange"

// Config 构造客户端所需的参数，全部可选
type Config struct {
	// APIKey is accepted for compatibility only; the X-API-KEY header is
	// derived from APISecret.
	APIKey string
	// APISecret is the base64 encoded 32-byte Ed25519 seed.
	APISecret string

	BaseURL            string
	ProxyURL           string
	Timeout            time.Duration
	InsecureSkipVerify bool

	// Transport overrides the default HTTPTransport. The client takes
	// ownership and closes it in Close.
	Transport Transport
}

// Client is the Backpack REST facade: public market data plus signed
// account/trading endpoints over one shared transport. Safe for concurrent use.
type Client struct {
	baseURL   string
	signer    *Signer
	transport Transport

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// New 创建客户端；未提供 secret 时只能调用公共接口
func New(cfg Config) (*Client, error) {
	if cfg.APIKey != "" && cfg.APISecret == "" {
		return nil, fmt.Errorf("%w: api secret must be provided if api key is provided", ErrConfiguration)
	}

	var signer *Signer
	if cfg.APISecret != "" {
		s, err := NewSigner(cfg.APISecret)
		if err != nil {
			return nil, err
		}
		signer = s
	}

	transport := cfg.Transport
	if transport == nil {
		t, err := NewHTTPTransport(HTTPTransportConfig{
			ProxyURL:           cfg.ProxyURL,
			Timeout:            cfg.Timeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, err
		}
		transport = t
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:   baseURL,
		signer:    signer,
		transport: transport,
	}, nil
}

// Signer returns the request signer, or nil for a public-only client.
func (c *Client) Signer() *Signer {
	return c.signer
}

// Close releases the transport. It must be called once all outstanding
// requests have completed; further calls are no-ops returning the first result.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.transport.Close()
	})
	return c.closeErr
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// publicRequest 发送无需签名的 GET 请求
func (c *Client) publicRequest(ctx context.Context, path string, params Params) (*http.Response, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.transport.Request(ctx, http.MethodGet, c.url(path), nil, params.Values(), nil)
}

// signedRequest 签名后发送请求：GET 参数走 query，其余方法走 JSON body
func (c *Client) signedRequest(ctx context.Context, method, path, instruction string, params Params) (*http.Response, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("%w: api secret is required for %s", ErrConfiguration, instruction)
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}

	params = params.compact()
	headers := c.signer.Sign(instruction, params)

	if method == http.MethodGet {
		return c.transport.Request(ctx, method, c.url(path), headers, params.Values(), nil)
	}
	return c.transport.Request(ctx, method, c.url(path), headers, nil, params)
}
