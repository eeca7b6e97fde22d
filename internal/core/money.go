// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing and formatting go through
// shopspring/decimal so no value ever passes through binary floating point.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// centsExp is the decimal exponent of one cent.
const centsExp = -2

// maxCents bounds parsed amounts well inside int64 so sums of many
// transactions cannot overflow.
var maxCents = decimal.New(1, 15)

// ParseAmount converts a decimal string to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The
// result is always positive: signs, zero and malformed input are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> Money{1234}, nil
//	ParseAmount("12,34")  -> Money{1234}, nil
//	ParseAmount("12.345") -> Money{1235}, nil (half-up)
//	ParseAmount("12.344") -> Money{1234}, nil
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// decimal accepts exponents; amounts are plain digits only
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// FromDecimal rounds d half-up to cents and validates the result.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(-centsExp).Shift(-centsExp)
	if cents.GreaterThanOrEqual(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents.IntPart()}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Decimal returns the exact decimal value of the amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, centsExp)
}

// String formats the amount with exactly two fractional digits, e.g. "120.00"
// or "-5.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(-centsExp)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// ParseSignedAmount converts a decimal string that may be zero or negative
// to cents with half-up rounding. Running balances use it; transaction
// amounts go through ParseAmount.
func ParseSignedAmount(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(-centsExp).Shift(-centsExp)
	if cents.Abs().GreaterThanOrEqual(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}
