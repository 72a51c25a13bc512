// Package core provides the domain model and exact money arithmetic.
//
// Amounts are decimal.Decimal values. Rounding is always half-up (away from
// zero), which matches how the figures are presented to users.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the scale of monetary results.
	MoneyPlaces = 2
	// RatioPlaces is the scale of a ratio before it is turned into a percentage.
	RatioPlaces = 4
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a non-negative decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// RoundMoney rounds half-up to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// DivMoney divides and rounds half-up to two decimal places.
// A zero divisor yields zero.
func DivMoney(d, by decimal.Decimal) decimal.Decimal {
	if by.IsZero() {
		return decimal.Zero
	}
	return d.DivRound(by, MoneyPlaces)
}

// Percentage returns part/whole*100, with the ratio rounded half-up to four
// places first. It is zero when whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.DivRound(whole, RatioPlaces).Mul(hundred)
}

// FormatMoney renders d with exactly two decimals, e.g. "87.50".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// Float converts an exact result for presentation.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
