package backpack

import (
	"context"
	"net/http"
	"time"
)

const defaultLimit = 100

// GetAssets retrieves all assets supported by the exchange.
func (c *Client) GetAssets(ctx context.Context) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/assets", nil)
}

// GetMarkets retrieves all markets supported by the exchange.
func (c *Client) GetMarkets(ctx context.Context) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/markets", nil)
}

// GetTicker retrieves 24h summary statistics for one market.
func (c *Client) GetTicker(ctx context.Context, symbol string) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/ticker", Params{"symbol": symbol})
}

// GetTickers retrieves 24h summary statistics for all markets.
func (c *Client) GetTickers(ctx context.Context) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/tickers", nil)
}

// GetOrderBookDepth retrieves the order book depth. An empty symbol sends
// no parameters and leaves the server to reject or default it.
func (c *Client) GetOrderBookDepth(ctx context.Context, symbol string) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/depth", Params{}.SetString("symbol", symbol))
}

// GetKLines 获取 K 线；start/end 为零值时不发送，由服务端按 interval 与当前时间补全
func (c *Client) GetKLines(ctx context.Context, symbol string, interval Interval, start, end time.Time) (*http.Response, error) {
	params := Params{
		"symbol":   symbol,
		"interval": string(interval),
	}
	if !start.IsZero() {
		params["startTime"] = start.Unix()
	}
	if !end.IsZero() {
		params["endTime"] = end.Unix()
	}
	return c.publicRequest(ctx, "/api/v1/klines", params)
}

// GetStatus returns the system status and status message, if any.
func (c *Client) GetStatus(ctx context.Context) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/status", nil)
}

// Ping responds with pong.
func (c *Client) Ping(ctx context.Context) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/ping", nil)
}

// GetSystemTime returns the server time.
func (c *Client) GetSystemTime(ctx context.Context) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/time", nil)
}

// GetRecentTrades retrieves the most recent trades (server max 1000).
func (c *Client) GetRecentTrades(ctx context.Context, symbol string, limit int) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/trades", Params{
		"symbol": symbol,
		"limit":  orDefaultLimit(limit),
	})
}

// GetHistoricalTrades retrieves public trade history for a symbol.
func (c *Client) GetHistoricalTrades(ctx context.Context, symbol string, limit, offset int) (*http.Response, error) {
	return c.publicRequest(ctx, "/api/v1/trades/history", Params{
		"symbol": symbol,
		"limit":  orDefaultLimit(limit),
		"offset": orZero(offset),
	})
}

func orDefaultLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

func orZero(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
