package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/pkg/cache"
	clobtypes "github.com/opiniontrade/clob-go/pkg/types"
)

const (
	gasLimitApprove   = uint64(100_000)
	gasLimitSplit     = uint64(300_000)
	gasLimitMerge     = uint64(300_000)
	gasLimitRedeem    = uint64(300_000)
	receiptPollEvery  = 2 * time.Second
	receiptWaitWindow = 120 * time.Second
)

// Gas preflight margins. Multi-op covers flows that may chain an approval
// before the main transaction.
const (
	GasMarginSingle = 1.2
	GasMarginMulti  = 1.5
)

var (
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// Allowances below half of max uint256 are treated as consumed and
	// re-approved on the next EnableTrading.
	approvalFloor = new(big.Int).Rsh(maxUint256, 1)

	priorityFee = big.NewInt(1_500_000_000) // 1.5 gwei
)

// Orchestrator builds, signs, sends, and awaits settlement-side transactions
// for one signing key.
type Orchestrator struct {
	backend           ethBackend
	privateKey        *ecdsa.PrivateKey
	owner             common.Address
	conditionalTokens common.Address
	decimalsCache     cache.Cache
	logger            *zap.Logger

	mu        sync.Mutex
	approvals map[string]bool
}

// NewOrchestrator creates an orchestrator. decimalsCache may be nil, in
// which case every decimals lookup goes to the chain.
func NewOrchestrator(
	backend ethBackend,
	privateKey *ecdsa.PrivateKey,
	conditionalTokens common.Address,
	decimalsCache cache.Cache,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		backend:           backend,
		privateKey:        privateKey,
		owner:             crypto.PubkeyToAddress(privateKey.PublicKey),
		conditionalTokens: conditionalTokens,
		decimalsCache:     decimalsCache,
		logger:            logger,
		approvals:         make(map[string]bool),
	}
}

// Owner returns the address transactions are sent from.
func (o *Orchestrator) Owner() common.Address {
	return o.owner
}

// gasPrice returns the per-gas price used both for preflight and for the
// transaction itself: EIP-1559 maxFee when the chain exposes a base fee,
// the legacy suggestion otherwise.
func (o *Orchestrator) gasPrice(ctx context.Context) (price *big.Int, dynamic bool, err error) {
	header, err := o.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("get latest header: %w", err)
	}

	if header.BaseFee != nil {
		maxFee := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
		maxFee.Add(maxFee, priorityFee)
		return maxFee, true, nil
	}

	suggested, err := o.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("suggest gas price: %w", err)
	}
	return suggested, false, nil
}

// CheckGasBalance verifies the owner can pay for estimatedGas units with the
// given safety margin before anything is signed.
func (o *Orchestrator) CheckGasBalance(ctx context.Context, estimatedGas uint64, margin float64) error {
	balance, err := o.backend.BalanceAt(ctx, o.owner, nil)
	if err != nil {
		return fmt.Errorf("get gas balance: %w", err)
	}

	price, _, err := o.gasPrice(ctx)
	if err != nil {
		return err
	}

	gasWithMargin := big.NewInt(int64(float64(estimatedGas) * margin))
	required := new(big.Int).Mul(gasWithMargin, price)

	if balance.Cmp(required) < 0 {
		return &clobtypes.InsufficientGasBalanceError{
			Signer:    o.owner.Hex(),
			Required:  required,
			Available: balance,
		}
	}
	return nil
}

// EnableTrading grants the exchange an unlimited allowance on the quote
// token. Returns (nil, nil) when the existing allowance is still effectively
// unlimited.
func (o *Orchestrator) EnableTrading(ctx context.Context, quoteToken, exchange common.Address) (*clobtypes.TransactionResult, error) {
	allowance, err := o.erc20Allowance(ctx, quoteToken, o.owner, exchange)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(approvalFloor) >= 0 {
		o.recordApproval(quoteToken, exchange)
		return nil, nil
	}

	if err := o.CheckGasBalance(ctx, gasLimitApprove, GasMarginSingle); err != nil {
		return nil, err
	}

	result, err := o.approve(ctx, quoteToken, exchange, maxUint256)
	if err != nil {
		return nil, err
	}

	o.recordApproval(quoteToken, exchange)
	o.logger.Info("trading-enabled",
		zap.String("token", quoteToken.Hex()),
		zap.String("exchange", exchange.Hex()),
		zap.String("tx_hash", result.TxHash),
	)
	return result, nil
}

// IsApproved reports whether a confirmed approval for the pair has been
// recorded by this orchestrator.
func (o *Orchestrator) IsApproved(token, spender common.Address) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.approvals[approvalKey(token, spender)]
}

func (o *Orchestrator) recordApproval(token, spender common.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.approvals[approvalKey(token, spender)] = true
}

func approvalKey(token, spender common.Address) string {
	return token.Hex() + "/" + spender.Hex()
}

// Split locks collateral and mints one outcome token of each kind.
func (o *Orchestrator) Split(ctx context.Context, collateral common.Address, conditionID [32]byte, amount *big.Int, outcomeCount int) (*clobtypes.TransactionResult, error) {
	balance, err := o.erc20Balance(ctx, collateral, o.owner)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, &clobtypes.BalanceNotEnoughError{
			Token:     collateral.Hex(),
			Required:  amount,
			Available: balance,
		}
	}

	if err := o.CheckGasBalance(ctx, gasLimitApprove+gasLimitSplit, GasMarginMulti); err != nil {
		return nil, err
	}

	// The ConditionalTokens contract pulls the collateral, so it needs an
	// allowance covering the amount.
	allowance, err := o.erc20Allowance(ctx, collateral, o.owner, o.conditionalTokens)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		if _, err := o.approve(ctx, collateral, o.conditionalTokens, maxUint256); err != nil {
			return nil, fmt.Errorf("approve collateral for split: %w", err)
		}
		o.recordApproval(collateral, o.conditionalTokens)
	}

	data, err := conditionalTokensABI.Pack("splitPosition",
		collateral, [32]byte{}, conditionID, partitionFor(outcomeCount), amount)
	if err != nil {
		return nil, fmt.Errorf("pack splitPosition: %w", err)
	}

	result, err := o.sendAndWait(ctx, o.conditionalTokens, data, gasLimitSplit)
	if err != nil {
		return nil, err
	}
	o.logger.Info("position-split",
		zap.String("collateral", collateral.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", result.TxHash),
	)
	return result, nil
}

// Merge burns one outcome token of each kind and releases the collateral.
func (o *Orchestrator) Merge(ctx context.Context, collateral common.Address, conditionID [32]byte, amount *big.Int, outcomeCount int) (*clobtypes.TransactionResult, error) {
	if err := o.CheckGasBalance(ctx, gasLimitMerge, GasMarginSingle); err != nil {
		return nil, err
	}

	data, err := conditionalTokensABI.Pack("mergePositions",
		collateral, [32]byte{}, conditionID, partitionFor(outcomeCount), amount)
	if err != nil {
		return nil, fmt.Errorf("pack mergePositions: %w", err)
	}

	result, err := o.sendAndWait(ctx, o.conditionalTokens, data, gasLimitMerge)
	if err != nil {
		return nil, err
	}
	o.logger.Info("positions-merged",
		zap.String("collateral", collateral.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", result.TxHash),
	)
	return result, nil
}

// Redeem exchanges resolved outcome tokens for their collateral payout.
func (o *Orchestrator) Redeem(ctx context.Context, collateral common.Address, conditionID [32]byte, outcomeCount int) (*clobtypes.TransactionResult, error) {
	if err := o.CheckGasBalance(ctx, gasLimitRedeem, GasMarginSingle); err != nil {
		return nil, err
	}

	data, err := conditionalTokensABI.Pack("redeemPositions",
		collateral, [32]byte{}, conditionID, partitionFor(outcomeCount))
	if err != nil {
		return nil, fmt.Errorf("pack redeemPositions: %w", err)
	}

	result, err := o.sendAndWait(ctx, o.conditionalTokens, data, gasLimitRedeem)
	if err != nil {
		return nil, err
	}
	o.logger.Info("positions-redeemed",
		zap.String("collateral", collateral.Hex()),
		zap.String("tx_hash", result.TxHash),
	)
	return result, nil
}

// TokenDecimals returns the ERC20 decimals for a token, cached forever once
// read.
func (o *Orchestrator) TokenDecimals(ctx context.Context, token common.Address) (int, error) {
	key := "decimals/" + token.Hex()
	if o.decimalsCache != nil {
		if v, ok := o.decimalsCache.Get(key); ok {
			if d, ok := v.(int); ok {
				return d, nil
			}
		}
	}

	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, err
	}
	out, err := o.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("call decimals on %s: %w", token.Hex(), err)
	}

	var decimals uint8
	if err := erc20ABI.UnpackIntoInterface(&decimals, "decimals", out); err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}

	if o.decimalsCache != nil {
		o.decimalsCache.Set(key, int(decimals), 0)
	}
	return int(decimals), nil
}

// partitionFor returns the disjoint index sets covering n outcomes:
// [1, 2, 4, ...].
func partitionFor(outcomeCount int) []*big.Int {
	if outcomeCount < 2 {
		outcomeCount = 2
	}
	partition := make([]*big.Int, outcomeCount)
	for i := range partition {
		partition[i] = new(big.Int).Lsh(big.NewInt(1), uint(i))
	}
	return partition
}

func (o *Orchestrator) approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*clobtypes.TransactionResult, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}
	return o.sendAndWait(ctx, token, data, gasLimitApprove)
}

func (o *Orchestrator) erc20Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	out, err := o.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call allowance on %s: %w", token.Hex(), err)
	}
	var allowance *big.Int
	if err := erc20ABI.UnpackIntoInterface(&allowance, "allowance", out); err != nil {
		return nil, fmt.Errorf("unpack allowance: %w", err)
	}
	return allowance, nil
}

func (o *Orchestrator) erc20Balance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, err
	}
	out, err := o.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf on %s: %w", token.Hex(), err)
	}
	var balance *big.Int
	if err := erc20ABI.UnpackIntoInterface(&balance, "balanceOf", out); err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	return balance, nil
}

// sendAndWait builds, signs, and sends a transaction, then blocks until the
// receipt lands or the wait window closes.
func (o *Orchestrator) sendAndWait(ctx context.Context, to common.Address, data []byte, gasLimit uint64) (*clobtypes.TransactionResult, error) {
	chainID, err := o.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	nonce, err := o.backend.PendingNonceAt(ctx, o.owner)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}
	price, dynamic, err := o.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	var tx *types.Transaction
	if dynamic {
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: priorityFee,
			GasFeeCap: price,
			Gas:       gasLimit,
			To:        &to,
			Value:     big.NewInt(0),
			Data:      data,
		})
	} else {
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gasLimit,
			To:       &to,
			Value:    big.NewInt(0),
			Data:     data,
		})
	}

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), o.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := o.backend.SendTransaction(ctx, signedTx); err != nil {
		TxErrorsTotal.Inc()
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	TxSentTotal.Inc()

	receipt, err := o.waitForReceipt(ctx, signedTx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		TxErrorsTotal.Inc()
		return nil, &clobtypes.TxFailedError{TxHash: signedTx.Hash().Hex()}
	}

	result := &clobtypes.TransactionResult{
		TxHash:  signedTx.Hash().Hex(),
		Receipt: receipt,
	}
	if len(receipt.Logs) > 0 {
		result.Event = receipt.Logs[0]
	}
	return result, nil
}

func (o *Orchestrator) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, receiptWaitWindow)
	defer cancel()

	for {
		receipt, err := o.backend.TransactionReceipt(waitCtx, txHash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("timeout waiting for receipt of %s", txHash.Hex())
		case <-time.After(receiptPollEvery):
		}
	}
}
