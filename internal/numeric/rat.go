package numeric

import (
	"math/big"

	"github.com/opiniontrade/clob-go/pkg/types"
)

var oneRat = big.NewRat(1, 1)

// ParseAmountRat parses a strictly positive decimal string into an exact
// rational. field names the offending parameter in errors.
func ParseAmountRat(amount, field string) (*big.Rat, error) {
	parts, negative, err := parseDecimal(amount)
	if err != nil {
		return nil, types.NewInvalidParam("%s: %v", field, err)
	}
	if negative || parts.isZero() {
		return nil, types.NewInvalidParam("%s must be positive, got %q", field, amount)
	}
	return parts.Rat(), nil
}

// AtLeastOne reports whether r >= 1, the minimum order size accepted by the
// exchange.
func AtLeastOne(r *big.Rat) bool {
	return r.Cmp(oneRat) >= 0
}

// RatToSettlementUnits converts an exact rational amount into integer
// settlement units with half-up rounding, under the same bounds as
// ToSettlementUnits.
func RatToSettlementUnits(r *big.Rat, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, types.NewInvalidParam("decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	if r == nil || r.Sign() <= 0 {
		return nil, types.NewInvalidParam("amount must be positive")
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Int).Mul(r.Num(), scale)

	units, rem := new(big.Int).QuoRem(scaled, r.Denom(), new(big.Int))
	// Half-up: 2*rem >= denom.
	if new(big.Int).Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		units.Add(units, big.NewInt(1))
	}

	if units.Cmp(maxUint256) > 0 {
		return nil, types.NewInvalidParam("amount too large for uint256: %s", units.String())
	}
	if units.Sign() <= 0 {
		return nil, types.NewInvalidParam("amount rounds to zero settlement units")
	}
	return units, nil
}
