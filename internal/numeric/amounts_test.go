package numeric

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opiniontrade/clob-go/pkg/types"
)

func TestCalculateOrderAmounts_Buy(t *testing.T) {
	// BUY: price = maker/taker. 6 USDT at 0.01 buys 600 base tokens.
	maker, taker, err := CalculateOrderAmounts("0.01", mustUnits(t, "6", 18), types.OrderSideBuy)
	require.NoError(t, err)

	assert.Equal(t, "6000000000000000000", maker.String())
	assert.Equal(t, "600000000000000000000", taker.String())
}

func TestCalculateOrderAmounts_Sell(t *testing.T) {
	// SELL: price = taker/maker. Selling 600 base tokens at 0.01 yields 6 quote.
	maker, taker, err := CalculateOrderAmounts("0.01", mustUnits(t, "600", 18), types.OrderSideSell)
	require.NoError(t, err)

	assert.Equal(t, "600000000000000000000", maker.String())
	assert.Equal(t, "6000000000000000000", taker.String())
}

func TestCalculateOrderAmounts_ExactRatio(t *testing.T) {
	// The pair must reproduce the price fraction with no remainder for
	// every valid 3-digit price.
	makerUnits := mustUnits(t, "250", 6)

	for milli := int64(1); milli <= 999; milli++ {
		price := fmt.Sprintf("0.%03d", milli)
		num, den, err := ApproximateFraction(price, MaxPriceDenominator)
		require.NoError(t, err)

		for _, side := range []types.OrderSide{types.OrderSideBuy, types.OrderSideSell} {
			maker, taker, err := CalculateOrderAmounts(price, makerUnits, side)
			require.NoError(t, err, "price %s side %s", price, side)
			require.Positive(t, maker.Sign())
			require.Positive(t, taker.Sign())

			// maker*den == taker*num for BUY; mirrored for SELL.
			left := new(big.Int)
			right := new(big.Int)
			if side == types.OrderSideBuy {
				left.Mul(maker, big.NewInt(den))
				right.Mul(taker, big.NewInt(num))
			} else {
				left.Mul(maker, big.NewInt(num))
				right.Mul(taker, big.NewInt(den))
			}
			assert.Zero(t, left.Cmp(right), "price %s side %s: %s/%s not exactly %d/%d",
				price, side, maker, taker, num, den)
		}
	}
}

func TestCalculateOrderAmounts_TooSmall(t *testing.T) {
	// Maker below one fraction unit cannot form a positive pair.
	_, _, err := CalculateOrderAmounts("0.999", big.NewInt(10), types.OrderSideBuy)
	require.Error(t, err)

	var invalid *types.InvalidParamError
	assert.ErrorAs(t, err, &invalid)
}

func TestCalculateOrderAmounts_InvalidInputs(t *testing.T) {
	_, _, err := CalculateOrderAmounts("0.5", nil, types.OrderSideBuy)
	assert.Error(t, err)

	_, _, err = CalculateOrderAmounts("0.5", big.NewInt(0), types.OrderSideBuy)
	assert.Error(t, err)

	_, _, err = CalculateOrderAmounts("abc", big.NewInt(1000), types.OrderSideBuy)
	assert.Error(t, err)
}

func TestFloorToSignificantDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "123456789", want: "123400000"},
		{in: "1234", want: "1234"},
		{in: "999", want: "999"},
		{in: "100500000", want: "100500000"},
		{in: "123456", want: "123400"},
		{in: "0", want: "0"},
		// Floor, never round: 19999 stays 1999x-truncated, not 2000x.
		{in: "19999", want: "19990"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			in, ok := new(big.Int).SetString(tt.in, 10)
			require.True(t, ok)
			assert.Equal(t, tt.want, floorToSignificantDigits(in, 4).String())
		})
	}
}

func mustUnits(t *testing.T, amount string, decimals int) *big.Int {
	t.Helper()
	units, err := ToSettlementUnits(amount, decimals)
	require.NoError(t, err)
	return units
}
