// Package numeric implements the exact-precision amount arithmetic used by
// the order pipeline: decimal-to-settlement-unit conversion, price
// validation, and the maker/taker amount derivation that reproduces a
// requested price as an exact fraction. All arithmetic is done on decimal
// strings and big integers; binary floating point is never used.
package numeric

import (
	"math/big"
	"strings"

	"github.com/opiniontrade/clob-go/pkg/types"
)

// MaxDecimals is the largest supported token precision.
const MaxDecimals = 18

// maxUint256 = 2^256 - 1, the largest settlement amount.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// decimalParts is a strictly parsed non-negative decimal string.
type decimalParts struct {
	intPart  string // no leading zeros beyond a single "0"
	fracPart string // trailing zeros trimmed
}

// parseDecimal validates and splits a decimal string. Rejects signs other
// than a leading minus (which is reported as negative), exponents, empty
// parts and non-digit characters.
func parseDecimal(s string) (parts decimalParts, negative bool, err error) {
	if s == "" {
		return parts, false, types.NewInvalidParam("amount must not be empty")
	}

	if s[0] == '-' {
		negative = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return parts, false, types.NewInvalidParam("malformed decimal %q", s)
		}
	}

	if intPart == "" && fracPart == "" {
		return parts, false, types.NewInvalidParam("malformed decimal %q", s)
	}

	for _, p := range []string{intPart, fracPart} {
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return parts, false, types.NewInvalidParam("malformed decimal %q", s)
			}
		}
	}

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart = strings.TrimRight(fracPart, "0")

	return decimalParts{intPart: intPart, fracPart: fracPart}, negative, nil
}

func (p decimalParts) isZero() bool {
	return p.intPart == "0" && p.fracPart == ""
}

// String renders the canonical form: no leading or trailing zeros, no
// dangling decimal point.
func (p decimalParts) String() string {
	if p.fracPart == "" {
		return p.intPart
	}
	return p.intPart + "." + p.fracPart
}

// Rat converts the parsed decimal to an exact rational.
func (p decimalParts) Rat() *big.Rat {
	r := new(big.Rat)
	// parseDecimal guarantees the canonical form is a valid rational literal.
	r.SetString(p.String())
	return r
}

// ToSettlementUnits converts a human-readable decimal amount into integer
// settlement units, i.e. round(amount * 10^decimals). The rounding of
// digits beyond the token precision is half-up. Fails with InvalidParam if
// the amount is not strictly positive, decimals is out of [0, 18], or the
// result exceeds 2^256 - 1.
func ToSettlementUnits(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, types.NewInvalidParam("decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}

	parts, negative, err := parseDecimal(amount)
	if err != nil {
		return nil, err
	}
	if negative || parts.isZero() {
		return nil, types.NewInvalidParam("amount must be positive, got %q", amount)
	}

	frac := parts.fracPart
	roundUp := false
	if len(frac) > decimals {
		// Half-up on the first dropped digit.
		roundUp = frac[decimals] >= '5'
		frac = frac[:decimals]
	} else {
		frac = frac + strings.Repeat("0", decimals-len(frac))
	}

	result, ok := new(big.Int).SetString(parts.intPart+frac, 10)
	if !ok {
		return nil, types.NewInvalidParam("malformed decimal %q", amount)
	}
	if roundUp {
		result.Add(result, big.NewInt(1))
	}

	if result.Cmp(maxUint256) > 0 {
		return nil, types.NewInvalidParam("amount too large for uint256: %s", result.String())
	}
	if result.Sign() <= 0 {
		return nil, types.NewInvalidParam("amount rounds to zero settlement units: %q", amount)
	}

	return result, nil
}

// ToHumanUnits is the exact inverse of ToSettlementUnits for amounts
// representable at the token's precision. Zero settlement units map to "0".
func ToHumanUnits(units *big.Int, decimals int) (string, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return "", types.NewInvalidParam("decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	if units == nil || units.Sign() < 0 {
		return "", types.NewInvalidParam("settlement amount must be non-negative")
	}
	if units.Sign() == 0 {
		return "0", nil
	}

	digits := units.String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	split := len(digits) - decimals
	intPart := digits[:split]
	fracPart := strings.TrimRight(digits[split:], "0")

	if fracPart == "" {
		return intPart, nil
	}
	return intPart + "." + fracPart, nil
}

// ValidateAmount checks that a decimal quantity field is well formed,
// strictly positive, and has at most maxDecimals fractional digits.
// It returns the canonical string form.
func ValidateAmount(amount string, maxDecimals int, field string) (string, error) {
	parts, negative, err := parseDecimal(amount)
	if err != nil {
		return "", types.NewInvalidParam("%s: %v", field, err)
	}
	if negative || parts.isZero() {
		return "", types.NewInvalidParam("%s must be positive, got %q", field, amount)
	}
	if len(parts.fracPart) > maxDecimals {
		return "", types.NewInvalidParam("%s must have at most %d decimal places, got %q", field, maxDecimals, amount)
	}

	return parts.String(), nil
}
