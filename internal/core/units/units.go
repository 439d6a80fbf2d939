// Package units provides the unit-conversion policy for goods movements.
// All conversion factors and stepping rules live here; call sites never
// hardcode the Palette factor or the Paket step.
package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit names as they appear in the catalog and in persisted notes.
const (
	Stueck  = "Stück"
	Palette = "Palette"
	Paket   = "Paket"
)

// DefaultPaletteFactor is the number of base units (Stück) per Palette.
const DefaultPaletteFactor = 80

// Table holds unit conversion and stepping rules.
type Table struct {
	paletteFactor decimal.Decimal
}

// NewTable creates a policy table with the given Palette factor.
// A non-positive factor falls back to the default.
func NewTable(paletteFactor int64) *Table {
	if paletteFactor <= 0 {
		paletteFactor = DefaultPaletteFactor
	}
	return &Table{paletteFactor: decimal.NewFromInt(paletteFactor)}
}

// Default returns the policy table with standard factors.
func Default() *Table {
	return NewTable(DefaultPaletteFactor)
}

// PaletteFactor returns the configured Palette→Stück multiplier.
func (t *Table) PaletteFactor() decimal.Decimal {
	return t.paletteFactor
}

// ToBase converts an entered quantity to the base unit (Stück).
func (t *Table) ToBase(unit string, qty decimal.Decimal) decimal.Decimal {
	if Is(unit, Palette) {
		return qty.Mul(t.paletteFactor)
	}
	return qty
}

// FromBase converts a base-unit quantity back to the display unit.
func (t *Table) FromBase(unit string, qty decimal.Decimal) decimal.Decimal {
	if Is(unit, Palette) {
		return qty.Div(t.paletteFactor)
	}
	return qty
}

// Step returns the increment used when adjusting a staged quantity.
// Paket steps in tenths, everything else in whole units.
func (t *Table) Step(unit string) decimal.Decimal {
	if Is(unit, Paket) {
		return decimal.RequireFromString("0.1")
	}
	return decimal.NewFromInt(1)
}

// Round applies the unit's rounding rule to a staged quantity.
// Paket keeps one decimal place, all other units round to whole numbers.
func (t *Table) Round(unit string, qty decimal.Decimal) decimal.Decimal {
	if Is(unit, Paket) {
		return qty.Round(1)
	}
	return qty.Round(0)
}

// Is compares unit names case-insensitively.
func Is(unit, name string) bool {
	return strings.EqualFold(strings.TrimSpace(unit), name)
}
