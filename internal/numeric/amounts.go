package numeric

import (
	"math/big"

	"github.com/opiniontrade/clob-go/pkg/types"
)

// significantDigits is the precision the maker amount is trimmed to before
// the exact maker/taker pair is derived, keeping on-chain amounts clean.
const significantDigits = 4

// CalculateOrderAmounts derives the maker/taker settlement pair whose
// ratio equals the rational approximation of price exactly. On-chain
// settlement performs integer division, so any residual rounding here would
// be silently absorbed or rejected by the exchange contract.
//
// BUY means price = maker/taker; SELL means price = taker/maker.
func CalculateOrderAmounts(price string, makerUnits *big.Int, side types.OrderSide) (maker, taker *big.Int, err error) {
	if makerUnits == nil || makerUnits.Sign() <= 0 {
		return nil, nil, types.NewInvalidParam("maker amount must be positive")
	}

	num, den, err := ApproximateFraction(price, MaxPriceDenominator)
	if err != nil {
		return nil, nil, err
	}

	rounded := floorToSignificantDigits(makerUnits, significantDigits)

	// The maker leg is rebuilt as a whole multiple of its fraction side so
	// that maker/taker reduces to exactly num/den.
	var makerSide, takerSide *big.Int
	if side == types.OrderSideBuy {
		makerSide, takerSide = big.NewInt(num), big.NewInt(den)
	} else {
		makerSide, takerSide = big.NewInt(den), big.NewInt(num)
	}

	k := new(big.Int).Quo(rounded, makerSide)
	maker = new(big.Int).Mul(k, makerSide)
	taker = new(big.Int).Mul(k, takerSide)

	if maker.Sign() <= 0 || taker.Sign() <= 0 {
		return nil, nil, types.NewInvalidParam(
			"maker amount %s too small for price %s", makerUnits.String(), price)
	}

	return maker, taker, nil
}

// floorToSignificantDigits truncates value to n significant digits. The
// trailing digits are dropped, not rounded; the exchange has always floored
// here and changing it would move live order amounts.
func floorToSignificantDigits(value *big.Int, n int) *big.Int {
	if value.Sign() == 0 {
		return big.NewInt(0)
	}

	magnitude := len(value.String())
	if magnitude <= n {
		return new(big.Int).Set(value)
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(magnitude-n)), nil)
	trimmed := new(big.Int).Quo(value, divisor)

	return trimmed.Mul(trimmed, divisor)
}
