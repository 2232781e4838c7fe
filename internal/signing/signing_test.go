package signing

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opiniontrade/clob-go/pkg/types"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	domain := NewDomain(56, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	return NewSigner(domain, key, nil)
}

func testOrderData() *OrderData {
	return &OrderData{
		TokenID:       "86633423151642822495935103888427128622924559440929420014644800022560803156267",
		MakerAmount:   "6000000000000000000",
		TakerAmount:   "600000000000000000000",
		Side:          types.OrderSideBuy,
		SignatureType: types.SignatureTypeGnosisSafe,
	}
}

func TestBuildOrder_Defaults(t *testing.T) {
	s := newTestSigner(t)

	order, err := s.BuildOrder(testOrderData())
	require.NoError(t, err)

	assert.Equal(t, s.Address(), order.Maker)
	assert.Equal(t, s.Address(), order.Signer)
	assert.Equal(t, "0x0000000000000000000000000000000000000000", order.Taker)
	assert.Equal(t, "0", order.FeeRateBps)
	assert.Equal(t, "0", order.Nonce)
	assert.Equal(t, "0", order.Expiration)
	assert.Equal(t, "0", order.Side)
	assert.Equal(t, "1", order.SignatureType)
	assert.NotEmpty(t, order.Salt)
}

func TestBuildOrder_SignatureTypeEncoding(t *testing.T) {
	tests := []struct {
		name    string
		sigType types.SignatureType
		want    string
	}{
		{name: "eoa", sigType: types.SignatureTypeEOA, want: "0"},
		{name: "gnosis safe", sigType: types.SignatureTypeGnosisSafe, want: "1"},
		{name: "proxy", sigType: types.SignatureTypeProxy, want: "2"},
	}

	s := newTestSigner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testOrderData()
			data.SignatureType = tt.sigType

			order, err := s.BuildOrder(data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.SignatureType)
		})
	}
}

func TestBuildOrder_SaltVaries(t *testing.T) {
	s := newTestSigner(t)

	first, err := s.BuildOrder(testOrderData())
	require.NoError(t, err)
	second, err := s.BuildOrder(testOrderData())
	require.NoError(t, err)

	assert.NotEqual(t, first.Salt, second.Salt)
}

func TestSignOrder_RecoversSigner(t *testing.T) {
	s := newTestSigner(t)

	signed, err := s.BuildSignedOrder(testOrderData())
	require.NoError(t, err)
	require.Len(t, hexutil.MustDecode(signed.Signature), 65)

	digest, err := OrderSignHash(s.domain, signed.Order)
	require.NoError(t, err)

	sig := hexutil.MustDecode(signed.Signature)
	require.True(t, sig[64] == 27 || sig[64] == 28)
	sig[64] -= 27

	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), crypto.PubkeyToAddress(*pub).Hex())
}

func TestSignOrder_DigestChangesWithAmounts(t *testing.T) {
	s := newTestSigner(t)

	order, err := s.BuildOrder(testOrderData())
	require.NoError(t, err)

	base, err := OrderSignHash(s.domain, order)
	require.NoError(t, err)

	changed := *order
	changed.MakerAmount = "6000000000000000001"
	other, err := OrderSignHash(s.domain, &changed)
	require.NoError(t, err)

	assert.NotEqual(t, base, other)
}

func TestSignOrder_DigestChangesWithDomain(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)

	contract := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	s := NewSigner(NewDomain(56, contract), key, nil)

	order, err := s.BuildOrder(testOrderData())
	require.NoError(t, err)

	onBSC, err := OrderSignHash(NewDomain(56, contract), order)
	require.NoError(t, err)
	onBase, err := OrderSignHash(NewDomain(8453, contract), order)
	require.NoError(t, err)

	assert.NotEqual(t, onBSC, onBase)
}

func TestOrderSignHash_InvalidFields(t *testing.T) {
	s := newTestSigner(t)

	order, err := s.BuildOrder(testOrderData())
	require.NoError(t, err)

	bad := *order
	bad.TokenID = "not-a-number"
	_, err = OrderSignHash(s.domain, &bad)
	assert.ErrorIs(t, err, ErrInvalidTokenID)

	bad = *order
	bad.MakerAmount = ""
	_, err = OrderSignHash(s.domain, &bad)
	assert.ErrorIs(t, err, ErrInvalidMakerAmount)

	bad = *order
	bad.Salt = "0x12"
	_, err = OrderSignHash(s.domain, &bad)
	assert.ErrorIs(t, err, ErrInvalidOrderSalt)
}
