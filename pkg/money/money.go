// Package money converts between decimal amounts at the API boundary and the
// integer minor units (cents) stored by the ledger.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange reports an amount or sum that does not fit in int64 minor units.
var ErrOutOfRange = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ToCents rounds amount half-up to two places and returns it as minor units.
// 19.99 becomes 1999 even though 19.99*100 is not exact in binary floating point.
func ToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, amount.String())
	}
	return cents.IntPart(), nil
}

// FromCents returns the decimal amount for minor units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders minor units as a fixed two-place string ("16.00").
func Format(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// ParseCents parses a decimal string such as "19.99" into minor units.
func ParseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a decimal number", raw)
	}
	return ToCents(amount)
}

// Sum adds minor units exactly, failing instead of wrapping around.
func Sum(values ...int64) (int64, error) {
	var total int64
	for _, v := range values {
		if (v > 0 && total > math.MaxInt64-v) || (v < 0 && total < math.MinInt64-v) {
			return 0, fmt.Errorf("%w: sum of %d amounts", ErrOutOfRange, len(values))
		}
		total += v
	}
	return total, nil
}
