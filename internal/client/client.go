// Package client is the caller-facing trading client: it wraps the exchange
// REST API, the order signing pipeline, and the on-chain orchestrator behind
// one type, with TTL caches for quote tokens and market metadata.
package client

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/internal/journal"
	"github.com/opiniontrade/clob-go/internal/restapi"
	"github.com/opiniontrade/clob-go/pkg/cache"
	"github.com/opiniontrade/clob-go/pkg/config"
	"github.com/opiniontrade/clob-go/pkg/types"
)

const (
	quoteTokensCacheKey = "quote-tokens"
	marketCacheKeyFmt   = "market/%d"
)

// exchangeAPI is the REST surface the client consumes.
type exchangeAPI interface {
	GetQuoteTokens(ctx context.Context) ([]types.QuoteToken, error)
	GetMarkets(ctx context.Context, page, limit int, status types.MarketStatusFilter) ([]types.Market, int, error)
	GetMarket(ctx context.Context, marketID int) (*types.Market, error)
	GetOrderbook(ctx context.Context, tokenID string) (*types.Orderbook, error)
	GetLatestPrice(ctx context.Context, tokenID string) (string, error)
	PlaceOrder(ctx context.Context, req *restapi.PlaceOrderRequest) (*types.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetMyOrders(ctx context.Context, marketID int, status string, page, limit int) ([]types.OpenOrder, int, error)
	GetOrder(ctx context.Context, orderID string) (*types.OpenOrder, error)
	GetMyPositions(ctx context.Context, marketID, page, limit int) ([]types.Position, int, error)
	GetMyBalances(ctx context.Context) ([]types.Balance, error)
	GetMyTrades(ctx context.Context, marketID, page, limit int) ([]types.Trade, int, error)
}

// orchestrator is the on-chain surface the client consumes.
type orchestrator interface {
	Owner() common.Address
	EnableTrading(ctx context.Context, quoteToken, exchange common.Address) (*types.TransactionResult, error)
	IsApproved(token, spender common.Address) bool
	Split(ctx context.Context, collateral common.Address, conditionID [32]byte, amount *big.Int, outcomeCount int) (*types.TransactionResult, error)
	Merge(ctx context.Context, collateral common.Address, conditionID [32]byte, amount *big.Int, outcomeCount int) (*types.TransactionResult, error)
	Redeem(ctx context.Context, collateral common.Address, conditionID [32]byte, outcomeCount int) (*types.TransactionResult, error)
	TokenDecimals(ctx context.Context, token common.Address) (int, error)
}

// Client is a trading client bound to one chain, one API key, and one
// signing key. It issues one logical operation at a time; the caches it owns
// are touched only from its own call stack.
type Client struct {
	api     exchangeAPI
	orch    orchestrator
	journal journal.Journal

	privateKey       *ecdsa.PrivateKey
	funder           common.Address
	chainID          int64
	maxPriceDecimals int

	quoteTokens    *cache.TimeCache
	markets        *cache.TimeCache
	quoteTokensTTL time.Duration
	marketTTL      time.Duration

	logger *zap.Logger
	now    func() time.Time
}

// New wires a client from configuration and pre-built collaborators.
// jrnl may be nil (no journaling).
func New(cfg *config.Config, api exchangeAPI, orch orchestrator, jrnl journal.Journal, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	funder := crypto.PubkeyToAddress(key.PublicKey)
	if cfg.FunderAddress != "" {
		funder = common.HexToAddress(cfg.FunderAddress)
	}

	return &Client{
		api:              api,
		orch:             orch,
		journal:          jrnl,
		privateKey:       key,
		funder:           funder,
		chainID:          cfg.ChainID,
		maxPriceDecimals: cfg.MaxPriceDecimals,
		quoteTokens:      cache.NewTimeCache(nil, logger),
		markets:          cache.NewTimeCache(nil, logger),
		quoteTokensTTL:   cfg.QuoteTokensCacheTTL,
		marketTTL:        cfg.MarketCacheTTL,
		logger:           logger,
		now:              time.Now,
	}, nil
}

// Close releases the client's caches.
func (c *Client) Close() error {
	c.quoteTokens.Close()
	c.markets.Close()
	if c.journal != nil {
		return c.journal.Close()
	}
	return nil
}

// getQuoteTokens returns the supported quote tokens, cached for the
// configured TTL.
func (c *Client) getQuoteTokens(ctx context.Context) ([]types.QuoteToken, error) {
	if v, ok := c.quoteTokens.Get(quoteTokensCacheKey); ok {
		if tokens, ok := v.([]types.QuoteToken); ok {
			return tokens, nil
		}
	}

	tokens, err := c.api.GetQuoteTokens(ctx)
	if err != nil {
		return nil, err
	}
	c.quoteTokens.Set(quoteTokensCacheKey, tokens, c.quoteTokensTTL)
	return tokens, nil
}

// getMarket returns a market's detail, cached for the configured TTL.
func (c *Client) getMarket(ctx context.Context, marketID int) (*types.Market, error) {
	key := fmt.Sprintf(marketCacheKeyFmt, marketID)
	if v, ok := c.markets.Get(key); ok {
		if market, ok := v.(*types.Market); ok {
			return market, nil
		}
	}

	market, err := c.api.GetMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	c.markets.Set(key, market, c.marketTTL)
	return market, nil
}

// findQuoteToken matches a market's quote token address against the
// supported token list.
func (c *Client) findQuoteToken(ctx context.Context, address string) (*types.QuoteToken, error) {
	tokens, err := c.getQuoteTokens(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		if strings.EqualFold(tokens[i].QuoteTokenAddress, address) {
			return &tokens[i], nil
		}
	}
	return nil, types.NewInvalidParam("quote token %s is not supported", address)
}

// checkMarketChain rejects cross-chain operations.
func (c *Client) checkMarketChain(market *types.Market) error {
	marketChainID, err := strconv.ParseInt(market.ChainID, 10, 64)
	if err != nil {
		return &types.APIError{Message: fmt.Sprintf("invalid market chain id %q", market.ChainID)}
	}
	if marketChainID != c.chainID {
		return types.NewInvalidParam(
			"market %d lives on chain %d, client is bound to chain %d",
			market.MarketID, marketChainID, c.chainID)
	}
	return nil
}

// EnableTrading approves every supported quote token for its exchange
// contract. Pairs already recorded as approved are skipped, so a repeated
// call is cheap and returns an empty list.
func (c *Client) EnableTrading(ctx context.Context) ([]*types.TransactionResult, error) {
	tokens, err := c.getQuoteTokens(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*types.TransactionResult, 0, len(tokens))
	for _, qt := range tokens {
		token := common.HexToAddress(qt.QuoteTokenAddress)
		exchange := common.HexToAddress(qt.CTFExchangeAddress)

		if c.orch.IsApproved(token, exchange) {
			continue
		}

		result, err := c.orch.EnableTrading(ctx, token, exchange)
		if err != nil {
			return nil, fmt.Errorf("enable trading for %s: %w", qt.Symbol, err)
		}
		if result == nil {
			// Allowance was already unlimited; recorded, nothing submitted.
			continue
		}

		c.recordTransaction(ctx, "approve", 0, result)
		results = append(results, result)
	}
	return results, nil
}

func (c *Client) recordTransaction(ctx context.Context, kind string, marketID int, result *types.TransactionResult) {
	if c.journal == nil || result == nil {
		return
	}
	rec := &journal.TransactionRecord{
		Kind:      kind,
		MarketID:  marketID,
		TxHash:    result.TxHash,
		CreatedAt: c.now(),
	}
	if result.Receipt != nil {
		rec.GasUsed = result.Receipt.GasUsed
	}
	if err := c.journal.RecordTransaction(ctx, rec); err != nil {
		c.logger.Warn("journal-transaction-failed",
			zap.String("kind", kind),
			zap.Error(err))
	}
}

// GetMarkets lists markets. Thin validation, then delegate.
func (c *Client) GetMarkets(ctx context.Context, page, limit int, status types.MarketStatusFilter) ([]types.Market, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, types.NewInvalidParam("page and limit must be positive, got page=%d limit=%d", page, limit)
	}
	return c.api.GetMarkets(ctx, page, limit, status)
}

// GetMarket fetches one market, bypassing the cache.
func (c *Client) GetMarket(ctx context.Context, marketID int) (*types.Market, error) {
	if marketID <= 0 {
		return nil, types.NewInvalidParam("marketID must be positive, got %d", marketID)
	}
	return c.api.GetMarket(ctx, marketID)
}

// GetQuoteTokens lists the supported quote tokens (cached).
func (c *Client) GetQuoteTokens(ctx context.Context) ([]types.QuoteToken, error) {
	return c.getQuoteTokens(ctx)
}

// GetOrderbook fetches the book snapshot for a token.
func (c *Client) GetOrderbook(ctx context.Context, tokenID string) (*types.Orderbook, error) {
	if tokenID == "" {
		return nil, types.NewInvalidParam("tokenID must not be empty")
	}
	return c.api.GetOrderbook(ctx, tokenID)
}

// GetLatestPrice fetches the last traded price for a token.
func (c *Client) GetLatestPrice(ctx context.Context, tokenID string) (string, error) {
	if tokenID == "" {
		return "", types.NewInvalidParam("tokenID must not be empty")
	}
	return c.api.GetLatestPrice(ctx, tokenID)
}

// GetMyOrders lists the caller's orders.
func (c *Client) GetMyOrders(ctx context.Context, marketID int, status string, page, limit int) ([]types.OpenOrder, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, types.NewInvalidParam("page and limit must be positive, got page=%d limit=%d", page, limit)
	}
	return c.api.GetMyOrders(ctx, marketID, status, page, limit)
}

// GetMyPositions lists the caller's positions.
func (c *Client) GetMyPositions(ctx context.Context, marketID, page, limit int) ([]types.Position, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, types.NewInvalidParam("page and limit must be positive, got page=%d limit=%d", page, limit)
	}
	return c.api.GetMyPositions(ctx, marketID, page, limit)
}

// GetMyBalances lists the caller's balances.
func (c *Client) GetMyBalances(ctx context.Context) ([]types.Balance, error) {
	return c.api.GetMyBalances(ctx)
}

// GetMyTrades lists the caller's trade history.
func (c *Client) GetMyTrades(ctx context.Context, marketID, page, limit int) ([]types.Trade, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, types.NewInvalidParam("page and limit must be positive, got page=%d limit=%d", page, limit)
	}
	return c.api.GetMyTrades(ctx, marketID, page, limit)
}
