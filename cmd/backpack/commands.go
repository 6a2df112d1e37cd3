package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora"

	"backpack/pkg/backpack"
)

type command struct {
	name    string
	args    string
	help    string
	minArgs int
	run     func(ctx context.Context, c *backpack.Client, args []string) (*http.Response, error)
}

var commands = []command{
	{"status", "", "system status", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.GetStatus(ctx)
	}},
	{"ping", "", "ping the api", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.Ping(ctx)
	}},
	{"time", "", "server time", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.GetSystemTime(ctx)
	}},
	{"assets", "", "supported assets", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.GetAssets(ctx)
	}},
	{"markets", "", "supported markets", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.GetMarkets(ctx)
	}},
	{"tickers", "", "24h stats, all markets", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.GetTickers(ctx)
	}},
	{"ticker", "SYMBOL", "24h stats, one market", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.GetTicker(ctx, a[0])
	}},
	{"depth", "SYMBOL", "order book depth", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.GetOrderBookDepth(ctx, a[0])
	}},
	{"klines", "SYMBOL INTERVAL", "k-lines ending now", 2, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.GetKLines(ctx, a[0], backpack.Interval(a[1]), time.Time{}, time.Time{})
	}},
	{"trades", "SYMBOL [LIMIT]", "recent trades", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		limit, _, err := paging(a[1:])
		if err != nil {
			return nil, err
		}
		return c.GetRecentTrades(ctx, a[0], limit)
	}},
	{"history-trades", "SYMBOL [LIMIT [OFFSET]]", "historical trades", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		limit, offset, err := paging(a[1:])
		if err != nil {
			return nil, err
		}
		return c.GetHistoricalTrades(ctx, a[0], limit, offset)
	}},
	{"balances", "", "account balances", 0, func(ctx context.Context, c *backpack.Client, _ []string) (*http.Response, error) {
		return c.GetBalances(ctx)
	}},
	{"deposits", "[LIMIT [OFFSET]]", "deposit history", 0, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		limit, offset, err := paging(a)
		if err != nil {
			return nil, err
		}
		return c.GetDeposits(ctx, limit, offset)
	}},
	{"withdrawals", "[LIMIT [OFFSET]]", "withdrawal history", 0, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		limit, offset, err := paging(a)
		if err != nil {
			return nil, err
		}
		return c.GetWithdrawals(ctx, limit, offset)
	}},
	{"deposit-address", "BLOCKCHAIN", "deposit address", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.GetDepositAddress(ctx, a[0])
	}},
	{"open-orders", "SYMBOL", "open orders", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.GetOpenOrders(ctx, a[0])
	}},
	{"order-history", "SYMBOL [LIMIT [OFFSET]]", "order history", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		limit, offset, err := paging(a[1:])
		if err != nil {
			return nil, err
		}
		return c.GetOrderHistory(ctx, a[0], limit, offset)
	}},
	{"fills", "ORDER_ID SYMBOL", "fill history", 2, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.GetFillHistory(ctx, a[0], a[1], 0, 0)
	}},
	{"cancel-all", "SYMBOL", "cancel all open orders", 1, func(ctx context.Context, c *backpack.Client, a []string) (*http.Response, error) {
		return c.CancelAllOrders(ctx, a[0])
	}},
}

// CLI 把子命令映射到客户端方法并打印原始响应
type CLI struct {
	client *backpack.Client
	out    io.Writer
	au     aurora.Aurora
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}
	cmd, ok := lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	rest := args[1:]
	if len(rest) < cmd.minArgs {
		return fmt.Errorf("%s: expected %s", cmd.name, cmd.args)
	}

	resp, err := cmd.run(ctx, c.client, rest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.colorStatus(resp))
	fmt.Fprintln(c.out, string(body))
	return nil
}

func (c *CLI) colorStatus(resp *http.Response) aurora.Value {
	switch {
	case resp.StatusCode >= 500:
		return c.au.Red(resp.Status)
	case resp.StatusCode >= 400:
		return c.au.Yellow(resp.Status)
	default:
		return c.au.Green(resp.Status)
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// paging parses optional LIMIT and OFFSET arguments; zero means default.
func paging(args []string) (limit, offset int, err error) {
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil {
			return 0, 0, fmt.Errorf("invalid limit %q", args[0])
		}
	}
	if len(args) > 1 {
		if offset, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, fmt.Errorf("invalid offset %q", args[1])
		}
	}
	return limit, offset, nil
}
