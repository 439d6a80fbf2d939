// Package aggregate folds flat movement logs into de-duplicated,
// unit-aware summary views per grouping scope.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"warenbuchung/internal/core/types"
	"warenbuchung/internal/core/units"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/movement"
)

// ProductIndex resolves product references from the session cache.
// Aggregation never does remote I/O; unresolved references still
// aggregate under a SKU/name-derived key.
type ProductIndex interface {
	ByID(productID int64) (*catalog.Product, bool)
}

// Normalized is one movement record after unit and key resolution.
type Normalized struct {
	Key       string
	Name      string
	SKU       string
	Unit      string
	Quantity  types.Quantity
	ItemType  catalog.ItemType
	Record    *movement.Record
	Timestamp time.Time
}

// Normalizer derives canonical quantity, display unit and aggregation
// key for raw movement records.
type Normalizer struct {
	units    *units.Table
	products ProductIndex
}

// NewNormalizer creates a normalizer over the given unit policy table.
func NewNormalizer(table *units.Table, products ProductIndex) *Normalizer {
	return &Normalizer{units: table, products: products}
}

// Normalize resolves one record. Malformed notes never fail; the stored
// quantity and inferred unit are used silently.
func (n *Normalizer) Normalize(rec *movement.Record) Normalized {
	var product *catalog.Product
	if rec.ProductID != nil && n.products != nil {
		product, _ = n.products.ByID(*rec.ProductID)
	}

	unit := n.resolveUnit(rec, product)
	qty := n.resolveQuantity(rec, unit)

	itemType := catalog.ItemMaterial
	if product != nil && product.ItemType != "" {
		itemType = product.ItemType
	}
	// Anything booked in a non-base unit is consumable material, whatever
	// the catalog says.
	if !units.Is(unit, units.Stueck) {
		itemType = catalog.ItemMaterial
	}

	name := rec.ProductName
	sku := rec.SKU
	if product != nil {
		if product.Name != "" {
			name = product.Name
		}
		if product.SKU != "" {
			sku = product.SKU
		}
	}

	ts := rec.UpdatedAt
	if ts.IsZero() {
		ts = rec.CreatedAt
	}

	return Normalized{
		Key:       Key(rec.ProductID, sku, name),
		Name:      name,
		SKU:       sku,
		Unit:      unit,
		Quantity:  qty,
		ItemType:  itemType,
		Record:    rec,
		Timestamp: ts,
	}
}

// resolveUnit prefers the notes hint over the catalog base unit.
func (n *Normalizer) resolveUnit(rec *movement.Record, product *catalog.Product) string {
	if hint := movement.UnitHint(rec.Notes); hint != "" {
		return hint
	}
	if product != nil {
		return product.BaseUnit()
	}
	return units.Stueck
}

// resolveQuantity recovers the entered quantity for non-base units.
// The "Eingabe:" notes hint wins over recomputation from the stored
// base quantity; records predating the hint convention fall back to
// dividing by the Palette factor.
func (n *Normalizer) resolveQuantity(rec *movement.Record, unit string) types.Quantity {
	env := movement.ParseEnvelope(rec.Notes)

	switch {
	case units.Is(unit, units.Paket):
		if env.EnteredQuantity != nil && units.Is(env.EnteredUnit, units.Paket) {
			return *env.EnteredQuantity
		}
		return rec.Quantity
	case units.Is(unit, units.Palette):
		if env.EnteredQuantity != nil && units.Is(env.EnteredUnit, units.Palette) {
			return *env.EnteredQuantity
		}
		return n.units.FromBase(units.Palette, rec.Quantity)
	default:
		return rec.Quantity
	}
}

// Key derives the aggregation key: product id > SKU (case-insensitive)
// > lowercased name. Stable across repeated computations.
func Key(productID *int64, sku, name string) string {
	if productID != nil && *productID != 0 {
		return fmt.Sprintf("id:%d", *productID)
	}
	if s := strings.TrimSpace(sku); s != "" {
		return "sku:" + strings.ToLower(s)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(name))
}
