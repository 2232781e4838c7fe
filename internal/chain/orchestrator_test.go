package chain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clobtypes "github.com/opiniontrade/clob-go/pkg/types"
)

type fakeBackend struct {
	balance       *big.Int
	baseFee       *big.Int
	gasPrice      *big.Int
	allowance     *big.Int
	tokenBalance  *big.Int
	decimals      uint8
	decimalsCalls int
	receiptStatus uint64
	sent          []*types.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		balance:       mustBig("1000000000000000000"), // 1 ether
		gasPrice:      big.NewInt(5_000_000_000),
		allowance:     big.NewInt(0),
		tokenBalance:  big.NewInt(0),
		decimals:      18,
		receiptStatus: types.ReceiptStatusSuccessful,
	}
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad number: " + s)
	}
	return v
}

func (f *fakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	selector := msg.Data[:4]
	switch {
	case bytes.Equal(selector, erc20ABI.Methods["allowance"].ID):
		return erc20ABI.Methods["allowance"].Outputs.Pack(f.allowance)
	case bytes.Equal(selector, erc20ABI.Methods["balanceOf"].ID):
		return erc20ABI.Methods["balanceOf"].Outputs.Pack(f.tokenBalance)
	case bytes.Equal(selector, erc20ABI.Methods["decimals"].ID):
		f.decimalsCalls++
		return erc20ABI.Methods["decimals"].Outputs.Pack(f.decimals)
	}
	return nil, errors.New("unexpected call")
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(56), nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{
		Status: f.receiptStatus,
		TxHash: txHash,
		Logs:   []*types.Log{{TxHash: txHash}},
	}, nil
}

var (
	testToken    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testExchange = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testCT       = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func newTestOrchestrator(t *testing.T, backend *fakeBackend) *Orchestrator {
	t.Helper()
	key, err := crypto.HexToECDSA("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	return NewOrchestrator(backend, key, testCT, nil, nil)
}

func TestCheckGasBalance_LegacySufficient(t *testing.T) {
	backend := newFakeBackend()
	o := newTestOrchestrator(t, backend)

	err := o.CheckGasBalance(context.Background(), 100_000, GasMarginSingle)
	assert.NoError(t, err)
}

func TestCheckGasBalance_LegacyInsufficient(t *testing.T) {
	backend := newFakeBackend()
	backend.balance = big.NewInt(1000)
	o := newTestOrchestrator(t, backend)

	err := o.CheckGasBalance(context.Background(), 100_000, GasMarginSingle)

	var gasErr *clobtypes.InsufficientGasBalanceError
	require.ErrorAs(t, err, &gasErr)
	assert.Equal(t, o.Owner().Hex(), gasErr.Signer)
	// 100k gas * 1.2 margin * 5 gwei.
	assert.Equal(t, mustBig("600000000000000"), gasErr.Required)
	assert.Equal(t, big.NewInt(1000), gasErr.Available)
}

func TestCheckGasBalance_EIP1559UsesBaseFee(t *testing.T) {
	backend := newFakeBackend()
	backend.baseFee = big.NewInt(10_000_000_000) // 10 gwei

	// maxFee = 2*10 + 1.5 = 21.5 gwei; required = 100k * 1.2 * 21.5 gwei.
	required := mustBig("2580000000000000")

	backend.balance = new(big.Int).Sub(required, big.NewInt(1))
	o := newTestOrchestrator(t, backend)
	err := o.CheckGasBalance(context.Background(), 100_000, GasMarginSingle)
	var gasErr *clobtypes.InsufficientGasBalanceError
	require.ErrorAs(t, err, &gasErr)
	assert.Equal(t, required, gasErr.Required)

	backend.balance = required
	assert.NoError(t, o.CheckGasBalance(context.Background(), 100_000, GasMarginSingle))
}

func TestEnableTrading_AlreadyApproved(t *testing.T) {
	backend := newFakeBackend()
	backend.allowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	o := newTestOrchestrator(t, backend)

	result, err := o.EnableTrading(context.Background(), testToken, testExchange)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, backend.sent)
	assert.True(t, o.IsApproved(testToken, testExchange))
}

func TestEnableTrading_SubmitsApproval(t *testing.T) {
	backend := newFakeBackend()
	o := newTestOrchestrator(t, backend)

	result, err := o.EnableTrading(context.Background(), testToken, testExchange)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.TxHash)
	require.NotNil(t, result.Receipt)
	assert.NotNil(t, result.Event)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, testToken, *backend.sent[0].To())
	assert.True(t, o.IsApproved(testToken, testExchange))
}

func TestSplit_InsufficientCollateral(t *testing.T) {
	backend := newFakeBackend()
	backend.tokenBalance = big.NewInt(5)
	o := newTestOrchestrator(t, backend)

	_, err := o.Split(context.Background(), testToken, [32]byte{0x1}, big.NewInt(10), 2)

	var balErr *clobtypes.BalanceNotEnoughError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, testToken.Hex(), balErr.Token)
	assert.Equal(t, big.NewInt(10), balErr.Required)
	assert.Equal(t, big.NewInt(5), balErr.Available)
	assert.Empty(t, backend.sent)
}

func TestSplit_ApprovesThenSplits(t *testing.T) {
	backend := newFakeBackend()
	backend.tokenBalance = big.NewInt(100)
	o := newTestOrchestrator(t, backend)

	result, err := o.Split(context.Background(), testToken, [32]byte{0x1}, big.NewInt(10), 2)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Zero allowance forces an approval before the split itself.
	require.Len(t, backend.sent, 2)
	assert.Equal(t, testToken, *backend.sent[0].To())
	assert.Equal(t, testCT, *backend.sent[1].To())
	assert.True(t, o.IsApproved(testToken, testCT))
}

func TestSplit_SkipsApprovalWhenAllowanceCovers(t *testing.T) {
	backend := newFakeBackend()
	backend.tokenBalance = big.NewInt(100)
	backend.allowance = big.NewInt(100)
	o := newTestOrchestrator(t, backend)

	_, err := o.Split(context.Background(), testToken, [32]byte{0x1}, big.NewInt(10), 2)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, testCT, *backend.sent[0].To())
}

func TestMerge_SendsToConditionalTokens(t *testing.T) {
	backend := newFakeBackend()
	o := newTestOrchestrator(t, backend)

	result, err := o.Merge(context.Background(), testToken, [32]byte{0x2}, big.NewInt(7), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, result.TxHash)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, testCT, *backend.sent[0].To())
}

func TestRedeem_RevertedTx(t *testing.T) {
	backend := newFakeBackend()
	backend.receiptStatus = types.ReceiptStatusFailed
	o := newTestOrchestrator(t, backend)

	_, err := o.Redeem(context.Background(), testToken, [32]byte{0x3}, 2)

	var txErr *clobtypes.TxFailedError
	require.ErrorAs(t, err, &txErr)
	assert.NotEmpty(t, txErr.TxHash)
}

func TestTokenDecimals(t *testing.T) {
	backend := newFakeBackend()
	backend.decimals = 6
	o := newTestOrchestrator(t, backend)

	d, err := o.TokenDecimals(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, 6, d)
	assert.Equal(t, 1, backend.decimalsCalls)
}

func TestPartitionFor(t *testing.T) {
	assert.Equal(t,
		[]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(4)},
		partitionFor(3),
	)
	// A degenerate count still produces a binary partition.
	assert.Len(t, partitionFor(0), 2)
}
