// Package currency converts between human-entered amount strings
// ("1.5m", "250k", "1,000,000") and exact integer amounts in minor units.
// Monetary math never touches floating point; balances at this domain's
// magnitudes (10^9 and up) would drift.
package currency

import (
	"strings"

	"github.com/fadedpez/sentenza/internal/types"
	"github.com/shopspring/decimal"
)

// suffix multipliers, largest first for formatting
var suffixes = []struct {
	letter string
	exp    int32
}{
	{"b", 9},
	{"m", 6},
	{"k", 3},
}

// maxFractionDigits is how many fractional digits an amount string may
// carry; anything beyond is truncated, never rounded.
const maxFractionDigits = 3

// Parse converts an amount string into an exact non-negative integer
// amount. It accepts thousands separators, an optional decimal point and
// an optional case-insensitive k/m/b suffix. Fractional digits beyond the
// third, and any fraction left after applying the suffix, are truncated.
func Parse(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return decimal.Zero, types.NewCoreError(types.ErrInvalidFormat, "amount is empty")
	}

	exp := int32(0)
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix.letter) {
			exp = suffix.exp
			s = strings.TrimSuffix(s, suffix.letter)
			break
		}
	}

	// Thousands separators are display sugar; drop them before parsing.
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || !isPlainNumber(s) {
		return decimal.Zero, types.NewCoreError(types.ErrInvalidFormat, "amount is not a number: "+text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, types.WrapError(types.ErrInvalidFormat, "amount is not a number: "+text, err)
	}

	return d.Truncate(maxFractionDigits).Shift(exp).Truncate(0), nil
}

// isPlainNumber accepts only unsigned decimal literals: digits with at
// most one decimal point. Signs and exponents are rejected here so that
// decimal.NewFromString can't sneak them through.
func isPlainNumber(s string) bool {
	dots := 0
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// Format renders an integer amount for display, picking the largest
// suffix the value reaches and showing at most one fractional digit.
// Values below 1,000 are rendered plain.
func Format(amount decimal.Decimal) string {
	for _, suffix := range suffixes {
		threshold := decimal.New(1, suffix.exp)
		if amount.GreaterThanOrEqual(threshold) {
			return amount.Shift(-suffix.exp).Truncate(1).String() + suffix.letter
		}
	}
	return amount.Truncate(0).String()
}
