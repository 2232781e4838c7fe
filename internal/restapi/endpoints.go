package restapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/opiniontrade/clob-go/internal/signing"
	"github.com/opiniontrade/clob-go/pkg/types"
)

// PlaceOrderRequest is the wire payload for order submission. The embedded
// order is the exact struct that was signed.
type PlaceOrderRequest struct {
	*signing.Order
	Signature       string `json:"signature"`
	MarketID        int    `json:"marketId"`
	CurrencyAddress string `json:"currencyAddress"`
	Price           string `json:"price"`
	TradingMethod   int    `json:"tradingMethod"`
	Timestamp       int64  `json:"timestamp"`
}

// GetQuoteTokens lists the collateral tokens supported on this chain.
func (c *Client) GetQuoteTokens(ctx context.Context) ([]types.QuoteToken, error) {
	query := url.Values{"chainId": {strconv.Itoa(c.chainID)}}

	var result listResult
	if err := c.get(ctx, "/quoteToken", query, &result); err != nil {
		return nil, err
	}
	var tokens []types.QuoteToken
	if err := json.Unmarshal(result.List, &tokens); err != nil {
		return nil, fmt.Errorf("decode quote tokens: %w", err)
	}
	return tokens, nil
}

// GetMarkets lists markets with pagination and an optional status filter.
func (c *Client) GetMarkets(ctx context.Context, page, limit int, status types.MarketStatusFilter) ([]types.Market, int, error) {
	query := url.Values{
		"chainId": {strconv.Itoa(c.chainID)},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(limit)},
	}
	if status != types.MarketStatusFilterAll {
		query.Set("status", string(status))
	}

	var result listResult
	if err := c.get(ctx, "/market", query, &result); err != nil {
		return nil, 0, err
	}
	var markets []types.Market
	if err := json.Unmarshal(result.List, &markets); err != nil {
		return nil, 0, fmt.Errorf("decode markets: %w", err)
	}
	return markets, result.Total, nil
}

// GetMarket fetches the detail for one market.
func (c *Client) GetMarket(ctx context.Context, marketID int) (*types.Market, error) {
	var result dataResult
	if err := c.get(ctx, "/market/"+strconv.Itoa(marketID), nil, &result); err != nil {
		return nil, err
	}
	var market types.Market
	if err := json.Unmarshal(result.Data, &market); err != nil {
		return nil, fmt.Errorf("decode market: %w", err)
	}
	return &market, nil
}

// GetOrderbook fetches the book snapshot for one token.
func (c *Client) GetOrderbook(ctx context.Context, tokenID string) (*types.Orderbook, error) {
	query := url.Values{"tokenId": {tokenID}}

	var result dataResult
	if err := c.get(ctx, "/token/orderbook", query, &result); err != nil {
		return nil, err
	}
	var book types.Orderbook
	if err := json.Unmarshal(result.Data, &book); err != nil {
		return nil, fmt.Errorf("decode orderbook: %w", err)
	}
	return &book, nil
}

// GetLatestPrice fetches the last traded price for one token.
func (c *Client) GetLatestPrice(ctx context.Context, tokenID string) (string, error) {
	query := url.Values{"tokenId": {tokenID}}

	var result dataResult
	if err := c.get(ctx, "/token/latest-price", query, &result); err != nil {
		return "", err
	}
	var payload struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(result.Data, &payload); err != nil {
		return "", fmt.Errorf("decode latest price: %w", err)
	}
	return payload.Price, nil
}

// PlaceOrder submits a signed order.
func (c *Client) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*types.OrderResponse, error) {
	var result dataResult
	if err := c.post(ctx, "/order", req, &result); err != nil {
		return nil, err
	}
	var order types.OrderResponse
	if err := json.Unmarshal(result.Data, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &order, nil
}

// CancelOrder cancels a single order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body := map[string]string{"orderId": orderID}
	return c.post(ctx, "/order/cancel", body, nil)
}

// GetMyOrders lists the caller's orders. marketID 0 means all markets.
func (c *Client) GetMyOrders(ctx context.Context, marketID int, status string, page, limit int) ([]types.OpenOrder, int, error) {
	query := url.Values{
		"chainId": {strconv.Itoa(c.chainID)},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(limit)},
	}
	if marketID > 0 {
		query.Set("marketId", strconv.Itoa(marketID))
	}
	if status != "" {
		query.Set("status", status)
	}

	var result listResult
	if err := c.get(ctx, "/order", query, &result); err != nil {
		return nil, 0, err
	}
	var orders []types.OpenOrder
	if err := json.Unmarshal(result.List, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return orders, result.Total, nil
}

// GetOrder fetches one order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*types.OpenOrder, error) {
	var result dataResult
	if err := c.get(ctx, "/order/"+orderID, nil, &result); err != nil {
		return nil, err
	}
	var order types.OpenOrder
	if err := json.Unmarshal(result.Data, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// GetMyPositions lists the caller's positions. marketID 0 means all markets.
func (c *Client) GetMyPositions(ctx context.Context, marketID, page, limit int) ([]types.Position, int, error) {
	query := url.Values{
		"chainId": {strconv.Itoa(c.chainID)},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(limit)},
	}
	if marketID > 0 {
		query.Set("marketId", strconv.Itoa(marketID))
	}

	var result listResult
	if err := c.get(ctx, "/positions", query, &result); err != nil {
		return nil, 0, err
	}
	var positions []types.Position
	if err := json.Unmarshal(result.List, &positions); err != nil {
		return nil, 0, fmt.Errorf("decode positions: %w", err)
	}
	return positions, result.Total, nil
}

// GetMyBalances lists the caller's balances.
func (c *Client) GetMyBalances(ctx context.Context) ([]types.Balance, error) {
	query := url.Values{"chainId": {strconv.Itoa(c.chainID)}}

	var result listResult
	if err := c.get(ctx, "/user/balance", query, &result); err != nil {
		return nil, err
	}
	var balances []types.Balance
	if err := json.Unmarshal(result.List, &balances); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	return balances, nil
}

// GetMyTrades lists the caller's trade history. marketID 0 means all markets.
func (c *Client) GetMyTrades(ctx context.Context, marketID, page, limit int) ([]types.Trade, int, error) {
	query := url.Values{
		"chainId": {strconv.Itoa(c.chainID)},
		"page":    {strconv.Itoa(page)},
		"limit":   {strconv.Itoa(limit)},
	}
	if marketID > 0 {
		query.Set("marketId", strconv.Itoa(marketID))
	}

	var result listResult
	if err := c.get(ctx, "/trade", query, &result); err != nil {
		return nil, 0, err
	}
	var trades []types.Trade
	if err := json.Unmarshal(result.List, &trades); err != nil {
		return nil, 0, fmt.Errorf("decode trades: %w", err)
	}
	return trades, result.Total, nil
}
