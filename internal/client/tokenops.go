package client

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/pkg/types"
)

// decodeConditionID parses the market's hex condition identifier into the
// fixed-width form the conditional-tokens contract expects.
func decodeConditionID(s string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(raw) == 0 || len(raw) > 32 {
		return id, types.NewInvalidParam("invalid condition id %q", s)
	}
	copy(id[32-len(raw):], raw)
	return id, nil
}

// outcomeCount defaults to a binary market when the API omits options.
func outcomeCount(market *types.Market) int {
	if len(market.Options) >= 2 {
		return len(market.Options)
	}
	return 2
}

// prepareTokenOp runs the shared preconditions of split, merge, and redeem:
// market lookup, chain check, and condition-id decoding.
func (c *Client) prepareTokenOp(ctx context.Context, marketID int) (*types.Market, common.Address, [32]byte, error) {
	market, err := c.getMarket(ctx, marketID)
	if err != nil {
		return nil, common.Address{}, [32]byte{}, err
	}
	if err := c.checkMarketChain(market); err != nil {
		return nil, common.Address{}, [32]byte{}, err
	}

	conditionID, err := decodeConditionID(market.ConditionID)
	if err != nil {
		return nil, common.Address{}, [32]byte{}, err
	}

	return market, common.HexToAddress(market.QuoteToken), conditionID, nil
}

// Split locks `amount` settlement units of collateral and mints a full set
// of outcome tokens. Permitted while the market is active, resolving, or
// resolved.
func (c *Client) Split(ctx context.Context, marketID int, amount *big.Int) (*types.TransactionResult, error) {
	if marketID <= 0 {
		return nil, types.NewInvalidParam("marketID must be positive, got %d", marketID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, types.NewInvalidParam("amount must be positive")
	}

	market, collateral, conditionID, err := c.prepareTokenOp(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !market.Status.SplitAllowed() {
		return nil, types.NewInvalidParam(
			"market %d does not allow split/merge in its current state", marketID)
	}

	result, err := c.orch.Split(ctx, collateral, conditionID, amount, outcomeCount(market))
	if err != nil {
		return nil, err
	}

	c.logger.Info("split-executed",
		zap.Int("market-id", marketID),
		zap.String("amount", amount.String()),
		zap.String("tx-hash", result.TxHash),
	)
	c.recordTransaction(ctx, "split", marketID, result)
	return result, nil
}

// Merge burns a full set of outcome tokens and releases `amount` settlement
// units of collateral. Same status gate as Split.
func (c *Client) Merge(ctx context.Context, marketID int, amount *big.Int) (*types.TransactionResult, error) {
	if marketID <= 0 {
		return nil, types.NewInvalidParam("marketID must be positive, got %d", marketID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, types.NewInvalidParam("amount must be positive")
	}

	market, collateral, conditionID, err := c.prepareTokenOp(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !market.Status.SplitAllowed() {
		return nil, types.NewInvalidParam(
			"market %d does not allow split/merge in its current state", marketID)
	}

	result, err := c.orch.Merge(ctx, collateral, conditionID, amount, outcomeCount(market))
	if err != nil {
		return nil, err
	}

	c.logger.Info("merge-executed",
		zap.Int("market-id", marketID),
		zap.String("amount", amount.String()),
		zap.String("tx-hash", result.TxHash),
	)
	c.recordTransaction(ctx, "merge", marketID, result)
	return result, nil
}

// Redeem exchanges resolved outcome tokens for their payout. Only permitted
// once the market is resolved.
func (c *Client) Redeem(ctx context.Context, marketID int) (*types.TransactionResult, error) {
	if marketID <= 0 {
		return nil, types.NewInvalidParam("marketID must be positive, got %d", marketID)
	}

	market, collateral, conditionID, err := c.prepareTokenOp(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !market.Status.RedeemAllowed() {
		return nil, types.NewInvalidParam("market %d is not resolved yet", marketID)
	}

	result, err := c.orch.Redeem(ctx, collateral, conditionID, outcomeCount(market))
	if err != nil {
		return nil, err
	}

	c.logger.Info("redeem-executed",
		zap.Int("market-id", marketID),
		zap.String("tx-hash", result.TxHash),
	)
	c.recordTransaction(ctx, "redeem", marketID, result)
	return result, nil
}
