// Package types provides common type aliases and utilities.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Quantity is a goods quantity with full decimal precision.
//
// Quantities carry fractional values (a Paket may be booked in tenths),
// so they share the decimal representation with Money rather than a
// scaled integer.
type Quantity = decimal.Decimal

// NewQuantity creates a Quantity from a float.
func NewQuantity(f float64) Quantity {
	return decimal.NewFromFloat(f)
}

// NewQuantityFromInt creates a Quantity from an integer count.
func NewQuantityFromInt(n int64) Quantity {
	return decimal.NewFromInt(n)
}

// ParseQuantityInput parses user-entered quantity text.
//
// Accepts comma as decimal separator (German locale) and normalizes it
// to a period before parsing. Unparseable input resolves to zero; the
// capture flows treat garbage the same as an empty field.
func ParseQuantityInput(s string) Quantity {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatQuantity renders a quantity for display and notes encoding:
// whole values without a fraction, fractional values trimmed of
// trailing zeros.
func FormatQuantity(q Quantity) string {
	if q.IsInteger() {
		return q.StringFixed(0)
	}
	return q.String()
}
