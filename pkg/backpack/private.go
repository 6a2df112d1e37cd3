package backpack

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// Instructions signed by the private endpoints.
const (
	InstructionBalanceQuery         = "balanceQuery"
	InstructionDepositAddressQuery  = "depositAddressQuery"
	InstructionWithdrawalQueryAll   = "withdrawalQueryAll"
	InstructionWithdraw             = "withdraw"
	InstructionOrderHistoryQueryAll = "orderHistoryQueryAll"
	InstructionFillHistoryQueryAll  = "fillHistoryQueryAll"
	InstructionOrderQuery           = "orderQuery"
	InstructionOrderExecute         = "orderExecute"
	InstructionOrderCancel          = "orderCancel"
	InstructionOrderQueryAll        = "orderQueryAll"
	InstructionOrderCancelAll       = "orderCancelAll"
)

// WithdrawalRequest 提现请求；ClientID 与 TwoFactorToken 可选
type WithdrawalRequest struct {
	Address        string
	Blockchain     string
	Quantity       decimal.Decimal
	Symbol         string
	ClientID       *uint32
	TwoFactorToken string
}

// OrderQuery identifies one open order. At least one of ClientID and
// OrderID should be set; when both are, the server prefers OrderID.
type OrderQuery struct {
	Symbol   string
	ClientID *uint32
	OrderID  string
}

// ExecuteOrderRequest 下单参数；指针字段为 nil 时不出现在 payload 中
type ExecuteOrderRequest struct {
	Symbol    string
	Side      string // Bid / Ask
	OrderType string // Limit / Market

	ClientID            *uint32
	Price               *decimal.Decimal
	Quantity            *decimal.Decimal
	QuoteQuantity       *decimal.Decimal
	PostOnly            *bool
	SelfTradePrevention string
	TimeInForce         string
	TriggerPrice        *decimal.Decimal
}

// GetBalances retrieves account balances, available and locked.
func (c *Client) GetBalances(ctx context.Context) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodGet, "/api/v1/capital", InstructionBalanceQuery, nil)
}

// GetDeposits retrieves deposit history. The exchange expects this query
// signed with the balanceQuery instruction.
func (c *Client) GetDeposits(ctx context.Context, limit, offset int) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodGet, "/wapi/v1/capital/deposits", InstructionBalanceQuery, Params{
		"limit":  orDefaultLimit(limit),
		"offset": orZero(offset),
	})
}

// GetDepositAddress retrieves the deposit address for a blockchain.
func (c *Client) GetDepositAddress(ctx context.Context, blockchain string) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodGet, "/wapi/v1/capital/deposit/address", InstructionDepositAddressQuery, Params{
		"blockchain": Capitalize(blockchain),
	})
}

// GetWithdrawals retrieves withdrawal history.
func (c *Client) GetWithdrawals(ctx context.Context, limit, offset int) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodGet, "/wapi/v1/capital/withdrawals", InstructionWithdrawalQueryAll, Params{
		"limit":  orDefaultLimit(limit),
		"offset": orZero(offset),
	})
}

// RequestWithdrawal sends a withdrawal to the given address.
func (c *Client) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*http.Response, error) {
	params := Params{
		"address":    req.Address,
		"blockchain": Capitalize(req.Blockchain),
		"quantity":   req.Quantity,
		"symbol":     req.Symbol,
	}
	params.Set("clientId", req.ClientID)
	params.SetString("twoFactorToken", req.TwoFactorToken)

	return c.signedRequest(ctx, http.MethodPost, "/wapi/v1/capital/withdraw", InstructionWithdraw, params)
}

// GetOrderHistory retrieves orders no longer resting on the book (and
// possibly some that still are; prefer GetOpenOrders for those). An empty
// symbol queries all markets.
func (c *Client) GetOrderHistory(ctx context.Context, symbol string, limit, offset int) (*http.Response, error) {
	params := Params{
		"limit":  orDefaultLimit(limit),
		"offset": orZero(offset),
	}
	params.SetString("symbol", symbol)
	return c.signedRequest(ctx, http.MethodGet, "/wapi/v1/history/orders", InstructionOrderHistoryQueryAll, params)
}

// GetFillHistory retrieves historical fills. orderID and symbol are
// optional filters; empty ones are not sent.
func (c *Client) GetFillHistory(ctx context.Context, orderID, symbol string, limit, offset int) (*http.Response, error) {
	params := Params{
		"limit":  orDefaultLimit(limit),
		"offset": orZero(offset),
	}
	params.SetString("orderId", orderID)
	params.SetString("symbol", symbol)
	return c.signedRequest(ctx, http.MethodGet, "/wapi/v1/history/fills", InstructionFillHistoryQueryAll, params)
}

// GetOpenOrder retrieves an order only while it rests on the book.
func (c *Client) GetOpenOrder(ctx context.Context, q OrderQuery) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodGet, "/api/v1/order", InstructionOrderQuery, q.params())
}

// ExecuteOrder 提交订单到撮合引擎；symbol 强制大写，side/orderType 首字母大写
func (c *Client) ExecuteOrder(ctx context.Context, req ExecuteOrderRequest) (*http.Response, error) {
	params := Params{
		"symbol":    strings.ToUpper(req.Symbol),
		"side":      Capitalize(req.Side),
		"orderType": Capitalize(req.OrderType),
	}
	params.Set("clientId", req.ClientID)
	params.Set("price", req.Price)
	params.Set("quantity", req.Quantity)
	params.Set("quoteQuantity", req.QuoteQuantity)
	params.Set("postOnly", req.PostOnly)
	params.SetString("selfTradePrevention", req.SelfTradePrevention)
	params.SetString("timeInForce", req.TimeInForce)
	params.Set("triggerPrice", req.TriggerPrice)

	return c.signedRequest(ctx, http.MethodPost, "/api/v1/order", InstructionOrderExecute, params)
}

// CancelOpenOrder cancels one resting order.
func (c *Client) CancelOpenOrder(ctx context.Context, q OrderQuery) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodDelete, "/api/v1/order", InstructionOrderCancel, q.params())
}

// GetOpenOrders retrieves all open orders of a market.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodGet, "/api/v1/orders", InstructionOrderQueryAll, Params{
		"symbol": symbol,
	})
}

// CancelAllOrders cancels every open order of a market.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) (*http.Response, error) {
	return c.signedRequest(ctx, http.MethodDelete, "/api/v1/orders", InstructionOrderCancelAll, Params{
		"symbol": symbol,
	})
}

func (q OrderQuery) params() Params {
	params := Params{"symbol": q.Symbol}
	params.Set("clientId", q.ClientID)
	params.SetString("orderId", q.OrderID)
	return params
}
