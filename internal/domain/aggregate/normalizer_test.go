package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"warenbuchung/internal/core/units"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/movement"
)

type fakeIndex map[int64]*catalog.Product

func (f fakeIndex) ByID(productID int64) (*catalog.Product, bool) {
	p, ok := f[productID]
	return p, ok
}

func ptrInt64(v int64) *int64 { return &v }

func newTestNormalizer(products fakeIndex) *Normalizer {
	return NewNormalizer(units.Default(), products)
}

func TestNormalizeDefaultsToStueck(t *testing.T) {
	n := newTestNormalizer(nil)

	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureOrder)
	rec.ProductName = "Kabelbinder"
	rec.Quantity = decimal.NewFromInt(12)

	got := n.Normalize(rec)
	assert.Equal(t, units.Stueck, got.Unit)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "name:kabelbinder", got.Key)
	assert.Equal(t, catalog.ItemMaterial, got.ItemType)
}

func TestNormalizeNotesHintBeatsCatalogUnit(t *testing.T) {
	products := fakeIndex{7: {ID: 7, Name: "Schrauben", SKU: "SCH-1", Unit: units.Stueck}}
	n := newTestNormalizer(products)

	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureOrder)
	rec.ProductID = ptrInt64(7)
	rec.Quantity = decimal.NewFromInt(160)
	rec.Notes = "Eingabe: 2 Paletten"

	got := n.Normalize(rec)
	assert.Equal(t, units.Palette, got.Unit)
	// The Eingabe hint recovers the entered value directly.
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "id:7", got.Key)
}

func TestNormalizePaletteLegacyFallback(t *testing.T) {
	n := newTestNormalizer(nil)

	// Old records mention the unit without the Eingabe hint; the stored
	// base quantity is divided by the Palette factor.
	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureNoOrder)
	rec.Quantity = decimal.NewFromInt(160)
	rec.Notes = "2 Paletten geliefert"

	got := n.Normalize(rec)
	assert.Equal(t, units.Palette, got.Unit)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(2)))
}

func TestNormalizePaketKeepsStoredQuantity(t *testing.T) {
	n := newTestNormalizer(nil)

	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureNoOrder)
	rec.Quantity = decimal.RequireFromString("0.5")
	rec.Notes = "Eingabe: 0.5 Paket"

	got := n.Normalize(rec)
	assert.Equal(t, units.Paket, got.Unit)
	assert.Equal(t, "0.5", got.Quantity.String())
}

func TestNormalizeNonBaseUnitForcesMaterial(t *testing.T) {
	products := fakeIndex{3: {ID: 3, Name: "Messgerät", ItemType: catalog.ItemDevice}}
	n := newTestNormalizer(products)

	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureNoOrder)
	rec.ProductID = ptrInt64(3)
	rec.Quantity = decimal.NewFromInt(80)
	rec.Notes = "Eingabe: 1 Palette"

	got := n.Normalize(rec)
	assert.Equal(t, catalog.ItemMaterial, got.ItemType)

	// Without the unit hint the catalog type stands.
	rec2 := movement.NewRecord(movement.DirectionIn, movement.CaptureNoOrder)
	rec2.ProductID = ptrInt64(3)
	rec2.Quantity = decimal.NewFromInt(1)
	assert.Equal(t, catalog.ItemDevice, n.Normalize(rec2).ItemType)
}

func TestNormalizeBackfillsNameFromCatalog(t *testing.T) {
	products := fakeIndex{9: {ID: 9, Name: "Dichtband", SKU: "DB-3"}}
	n := newTestNormalizer(products)

	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureOrder)
	rec.ProductID = ptrInt64(9)
	rec.Quantity = decimal.NewFromInt(1)

	got := n.Normalize(rec)
	assert.Equal(t, "Dichtband", got.Name)
	assert.Equal(t, "DB-3", got.SKU)
}

func TestKeyPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		productID *int64
		sku       string
		itemName  string
		want      string
	}{
		{"id wins", ptrInt64(5), "SKU-1", "Name", "id:5"},
		{"zero id ignored", ptrInt64(0), "SKU-1", "Name", "sku:sku-1"},
		{"sku over name", nil, " SKU-1 ", "Name", "sku:sku-1"},
		{"name fallback", nil, "", " Mixed Case ", "name:mixed case"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.productID, tt.sku, tt.itemName))
		})
	}
}
