package numeric

import (
	"math/big"

	"github.com/opiniontrade/clob-go/pkg/types"
)

// Price bounds accepted by the exchange, inclusive.
var (
	minPrice = big.NewRat(1, 1000)   // 0.001
	maxPrice = big.NewRat(999, 1000) // 0.999
)

// MaxPriceDenominator bounds the denominator of the rational price
// approximation used for order amounts.
const MaxPriceDenominator int64 = 1_000_000

// fractionIterationCap bounds the continued-fraction expansion.
const fractionIterationCap = 20

// ValidatePrice checks that a price is inside [0.001, 0.999] and carries at
// most maxDecimals fractional digits, returning the canonical string form.
// String and numeric callers share this single path: canonicalize first,
// then count digits.
func ValidatePrice(price string, maxDecimals int) (string, error) {
	parts, negative, err := parseDecimal(price)
	if err != nil {
		return "", types.NewInvalidParam("price: %v", err)
	}
	if negative {
		return "", types.NewInvalidParam("price must be between 0.001 and 0.999, got %q", price)
	}
	if len(parts.fracPart) > maxDecimals {
		return "", types.NewInvalidParam("price must have at most %d decimal places, got %q", maxDecimals, price)
	}

	value := parts.Rat()
	if value.Cmp(minPrice) < 0 || value.Cmp(maxPrice) > 0 {
		return "", types.NewInvalidParam("price must be between 0.001 and 0.999, got %q", price)
	}

	return parts.String(), nil
}

// ApproximateFraction approximates a decimal price as numerator/denominator
// with denominator <= maxDenominator, using the continued-fraction
// expansion of the price. The convergents (h, k) accumulate through the
// standard recurrence h_i = a*h_{i-1} + h_{i-2}, k_i = a*k_{i-1} + k_{i-2}.
// The expansion stops when the next convergent's denominator would exceed
// the bound, when the remainder becomes integral, or after a fixed
// iteration cap.
func ApproximateFraction(price string, maxDenominator int64) (num, den int64, err error) {
	if maxDenominator <= 0 {
		return 0, 0, types.NewInvalidParam("maxDenominator must be positive, got %d", maxDenominator)
	}

	parts, negative, err := parseDecimal(price)
	if err != nil {
		return 0, 0, types.NewInvalidParam("price: %v", err)
	}
	if negative || parts.isZero() {
		return 0, 0, types.NewInvalidParam("price must be positive, got %q", price)
	}

	x := parts.Rat()
	bound := big.NewInt(maxDenominator)

	// Convergent state: (h2/k2) is i-2, (h1/k1) is i-1.
	h2, h1 := big.NewInt(0), big.NewInt(1)
	k2, k1 := big.NewInt(1), big.NewInt(0)

	for i := 0; i < fractionIterationCap; i++ {
		a := new(big.Int).Quo(x.Num(), x.Denom())

		h := new(big.Int).Mul(a, h1)
		h.Add(h, h2)
		k := new(big.Int).Mul(a, k1)
		k.Add(k, k2)

		if k.Cmp(bound) > 0 {
			break
		}

		h2, h1 = h1, h
		k2, k1 = k1, k

		// Remainder = x - a; invert for the next step unless converged.
		rem := new(big.Rat).Sub(x, new(big.Rat).SetInt(a))
		if rem.Sign() == 0 {
			break
		}
		x = rem.Inv(rem)
	}

	if k1.Sign() == 0 || h1.Sign() == 0 {
		return 0, 0, types.NewInvalidParam("no fraction with denominator <= %d approximates %q", maxDenominator, price)
	}

	return h1.Int64(), k1.Int64(), nil
}
