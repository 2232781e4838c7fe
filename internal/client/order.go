package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/internal/journal"
	"github.com/opiniontrade/clob-go/internal/numeric"
	"github.com/opiniontrade/clob-go/internal/restapi"
	"github.com/opiniontrade/clob-go/internal/signing"
	"github.com/opiniontrade/clob-go/pkg/types"
)

const (
	// cancelPageLimit and cancelMaxPages bound the cancel-all sweep.
	cancelPageLimit = 20
	cancelMaxPages  = 100

	// openOrderStatus is the API's filter value for pending orders.
	openOrderStatus = "1"
)

// PlaceOrder validates, prices, signs, and submits one order.
func (c *Client) PlaceOrder(ctx context.Context, input *types.PlaceOrderInput) (*types.OrderResponse, error) {
	if input == nil {
		return nil, types.NewInvalidParam("order input must not be nil")
	}
	if input.MarketID <= 0 {
		return nil, types.NewInvalidParam("marketID must be positive, got %d", input.MarketID)
	}
	if input.TokenID == "" {
		return nil, types.NewInvalidParam("tokenID must not be empty")
	}
	if input.OrderType != types.OrderTypeMarket && input.OrderType != types.OrderTypeLimit {
		return nil, types.NewInvalidParam("unknown order type %d", input.OrderType)
	}

	market, err := c.getMarket(ctx, input.MarketID)
	if err != nil {
		return nil, err
	}
	if err := c.checkMarketChain(market); err != nil {
		return nil, err
	}

	quoteToken, err := c.findQuoteToken(ctx, market.QuoteToken)
	if err != nil {
		return nil, err
	}

	price := input.Price
	if input.OrderType == types.OrderTypeLimit {
		price, err = numeric.ValidatePrice(input.Price, c.maxPriceDecimals)
		if err != nil {
			return nil, err
		}
	}

	makerRat, err := c.deriveMakerAmount(input, price)
	if err != nil {
		return nil, err
	}

	makerUnits, err := numeric.RatToSettlementUnits(makerRat, quoteToken.Decimals)
	if err != nil {
		return nil, err
	}

	// Market orders carry no price and no taker leg; the exchange fills at
	// the book.
	var takerUnits *big.Int
	if input.OrderType == types.OrderTypeLimit {
		makerUnits, takerUnits, err = numeric.CalculateOrderAmounts(price, makerUnits, input.Side)
		if err != nil {
			return nil, err
		}
	} else {
		price = "0"
		takerUnits = big.NewInt(0)
	}

	signerAddr := crypto.PubkeyToAddress(c.privateKey.PublicKey)
	sigType := types.SignatureTypeEOA
	if c.funder != signerAddr {
		sigType = types.SignatureTypeGnosisSafe
	}

	domain := signing.NewDomain(c.chainID, common.HexToAddress(quoteToken.CTFExchangeAddress))
	orderSigner := signing.NewSigner(domain, c.privateKey, c.logger)

	signed, err := orderSigner.BuildSignedOrder(&signing.OrderData{
		Maker:         c.funder.Hex(),
		Signer:        signerAddr.Hex(),
		TokenID:       input.TokenID,
		MakerAmount:   makerUnits.String(),
		TakerAmount:   takerUnits.String(),
		Side:          input.Side,
		SignatureType: sigType,
	})
	if err != nil {
		return nil, fmt.Errorf("sign order: %w", err)
	}

	resp, err := c.api.PlaceOrder(ctx, &restapi.PlaceOrderRequest{
		Order:           signed.Order,
		Signature:       signed.Signature,
		MarketID:        input.MarketID,
		CurrencyAddress: market.QuoteToken,
		Price:           price,
		TradingMethod:   int(input.OrderType),
		Timestamp:       c.now().Unix(),
	})
	if err != nil {
		OrdersTotal.WithLabelValues(input.Side.String(), "error").Inc()
		return nil, err
	}
	OrdersTotal.WithLabelValues(input.Side.String(), "ok").Inc()

	c.logger.Info("order-placed",
		zap.String("order-id", resp.OrderID),
		zap.Int("market-id", input.MarketID),
		zap.String("side", input.Side.String()),
		zap.String("price", price),
		zap.String("maker-amount", makerUnits.String()),
	)
	c.recordOrder(ctx, input, price, makerUnits.String(), resp)

	return resp, nil
}

// deriveMakerAmount turns the caller's quote- or base-denominated amount
// into the maker amount in quote-token units, as an exact rational.
func (c *Client) deriveMakerAmount(input *types.PlaceOrderInput, price string) (*big.Rat, error) {
	hasBase := input.MakerAmountInBaseToken != ""
	hasQuote := input.MakerAmountInQuoteToken != ""

	if hasBase == hasQuote {
		return nil, types.NewInvalidParam(
			"exactly one of makerAmountInBaseToken and makerAmountInQuoteToken must be set")
	}
	if input.Side == types.OrderSideBuy && input.OrderType == types.OrderTypeMarket && hasBase {
		return nil, types.NewInvalidParam("makerAmountInBaseToken is not allowed for market buy")
	}
	if input.Side == types.OrderSideSell && input.OrderType == types.OrderTypeMarket && hasQuote {
		return nil, types.NewInvalidParam("makerAmountInQuoteToken is not allowed for market sell")
	}

	if hasBase {
		base, err := numeric.ParseAmountRat(input.MakerAmountInBaseToken, "makerAmountInBaseToken")
		if err != nil {
			return nil, err
		}
		if !numeric.AtLeastOne(base) {
			return nil, types.NewInvalidParam("makerAmountInBaseToken must be at least 1")
		}
		if input.Side == types.OrderSideSell {
			return base, nil
		}
		// BUY against a base amount: maker = base * price.
		priceRat, err := numeric.ParseAmountRat(price, "price")
		if err != nil {
			return nil, err
		}
		return new(big.Rat).Mul(base, priceRat), nil
	}

	quote, err := numeric.ParseAmountRat(input.MakerAmountInQuoteToken, "makerAmountInQuoteToken")
	if err != nil {
		return nil, err
	}
	if !numeric.AtLeastOne(quote) {
		return nil, types.NewInvalidParam("makerAmountInQuoteToken must be at least 1")
	}
	if input.Side == types.OrderSideBuy {
		return quote, nil
	}
	// SELL against a quote amount: maker = quote / price.
	priceRat, err := numeric.ParseAmountRat(price, "price")
	if err != nil {
		return nil, err
	}
	return new(big.Rat).Quo(quote, priceRat), nil
}

func (c *Client) recordOrder(ctx context.Context, input *types.PlaceOrderInput, price, makerAmount string, resp *types.OrderResponse) {
	if c.journal == nil {
		return
	}
	err := c.journal.RecordOrder(ctx, &journal.OrderRecord{
		OrderID:   resp.OrderID,
		MarketID:  input.MarketID,
		TokenID:   input.TokenID,
		Side:      input.Side.String(),
		Price:     price,
		Maker:     c.funder.Hex(),
		Amount:    makerAmount,
		Status:    resp.Status,
		CreatedAt: c.now(),
	})
	if err != nil {
		c.logger.Warn("journal-order-failed",
			zap.String("order-id", resp.OrderID),
			zap.Error(err))
	}
}

// CancelOrder cancels one order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return types.NewInvalidParam("orderID must not be empty")
	}
	return c.api.CancelOrder(ctx, orderID)
}

// GetOrder fetches one order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*types.OpenOrder, error) {
	if orderID == "" {
		return nil, types.NewInvalidParam("orderID must not be empty")
	}
	return c.api.GetOrder(ctx, orderID)
}

// PlaceOrdersBatch submits orders strictly sequentially. A failure at one
// index never aborts the following items; the results array is always
// complete and index-aligned with the input.
func (c *Client) PlaceOrdersBatch(ctx context.Context, orders []*types.PlaceOrderInput) ([]types.BatchOrderResult, error) {
	if len(orders) == 0 {
		return nil, types.NewInvalidParam("orders list must not be empty")
	}

	results := make([]types.BatchOrderResult, 0, len(orders))
	for i, order := range orders {
		resp, err := c.PlaceOrder(ctx, order)
		if err != nil {
			results = append(results, types.BatchOrderResult{
				Index: i,
				Error: err.Error(),
				Order: order,
			})
			continue
		}
		results = append(results, types.BatchOrderResult{
			Index:   i,
			Success: true,
			Result:  resp,
			Order:   order,
		})
	}
	return results, nil
}

// CancelOrdersBatch cancels orders strictly sequentially with per-item
// failure isolation.
func (c *Client) CancelOrdersBatch(ctx context.Context, orderIDs []string) ([]types.BatchCancelResult, error) {
	if len(orderIDs) == 0 {
		return nil, types.NewInvalidParam("orderIDs list must not be empty")
	}

	results := make([]types.BatchCancelResult, 0, len(orderIDs))
	for i, orderID := range orderIDs {
		if err := c.CancelOrder(ctx, orderID); err != nil {
			results = append(results, types.BatchCancelResult{
				Index:   i,
				Error:   err.Error(),
				OrderID: orderID,
			})
			continue
		}
		results = append(results, types.BatchCancelResult{
			Index:   i,
			Success: true,
			OrderID: orderID,
		})
	}
	return results, nil
}

// CancelAllOrders collects the caller's open orders (optionally narrowed to
// one market and one side) and batch-cancels them. marketID 0 means all
// markets; side nil means both sides.
func (c *Client) CancelAllOrders(ctx context.Context, marketID int, side *types.OrderSide) (*types.CancelAllOrdersResult, error) {
	var orderIDs []string

	for page := 1; page <= cancelMaxPages; page++ {
		orders, _, err := c.api.GetMyOrders(ctx, marketID, openOrderStatus, page, cancelPageLimit)
		if err != nil {
			return nil, fmt.Errorf("list open orders page %d: %w", page, err)
		}
		if len(orders) == 0 {
			break
		}

		for _, order := range orders {
			if side != nil && order.Side != int(*side) {
				continue
			}
			if order.OrderID != "" {
				orderIDs = append(orderIDs, order.OrderID)
			}
		}

		if len(orders) < cancelPageLimit {
			break
		}
	}

	if len(orderIDs) == 0 {
		return &types.CancelAllOrdersResult{Results: []types.BatchCancelResult{}}, nil
	}

	results, err := c.CancelOrdersBatch(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	summary := &types.CancelAllOrdersResult{
		TotalOrders: len(orderIDs),
		Results:     results,
	}
	for _, r := range results {
		if r.Success {
			summary.Cancelled++
		} else {
			summary.Failed++
		}
	}

	c.logger.Info("cancel-all-completed",
		zap.Int("total", summary.TotalOrders),
		zap.Int("cancelled", summary.Cancelled),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
