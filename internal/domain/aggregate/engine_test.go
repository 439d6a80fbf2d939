package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warenbuchung/internal/core/units"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/movement"
)

func newTestEngine(products fakeIndex) *Engine {
	return NewEngine(NewNormalizer(units.Default(), products))
}

func record(productID int64, qty int64, at time.Time) movement.Record {
	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureOrder)
	rec.ProductID = ptrInt64(productID)
	rec.Quantity = decimal.NewFromInt(qty)
	rec.CreatedAt = at
	rec.UpdatedAt = at
	return *rec
}

func TestFoldSumsPerProduct(t *testing.T) {
	products := fakeIndex{
		1: {ID: 1, Name: "Produkt A", SKU: "A"},
		2: {ID: 2, Name: "Produkt B", SKU: "B"},
	}
	e := newTestEngine(products)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	records := []movement.Record{
		record(1, 3, base),
		record(2, 1, base.Add(time.Minute)),
		record(1, 2, base.Add(2*time.Minute)),
	}

	items := e.Fold(records, nil)
	require.Len(t, items, 2)

	a := items["id:1"]
	require.NotNil(t, a)
	assert.True(t, a.Quantity.Equal(decimal.NewFromInt(5)))
	assert.Len(t, a.History, 2)
	require.NotNil(t, a.LastBooking)
	assert.True(t, a.LastBooking.Timestamp.Equal(base.Add(2*time.Minute)))

	b := items["id:2"]
	require.NotNil(t, b)
	assert.True(t, b.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Len(t, b.History, 1)
}

func TestFoldIsPure(t *testing.T) {
	e := newTestEngine(fakeIndex{1: {ID: 1, Name: "Produkt A"}})
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	records := []movement.Record{record(1, 3, base), record(1, 2, base.Add(time.Hour))}

	first := e.Fold(records, nil)
	second := e.Fold(records, nil)

	require.Len(t, second, len(first))
	for key, item := range first {
		other := second[key]
		require.NotNil(t, other)
		assert.True(t, item.Quantity.Equal(other.Quantity))
		assert.Len(t, other.History, len(item.History))
	}
}

func TestFoldLastBookingStrictlyNewer(t *testing.T) {
	e := newTestEngine(nil)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// Two bookings with identical timestamps: the first encountered stays
	// the last booking.
	first := record(4, 1, at)
	second := record(4, 2, at)
	items := e.Fold([]movement.Record{first, second}, nil)

	item := items["id:4"]
	require.NotNil(t, item)
	require.NotNil(t, item.LastBooking)
	assert.Equal(t, first.ID, item.LastBooking.RecordID)
}

func TestFoldSeedsPlaceholders(t *testing.T) {
	e := newTestEngine(nil)

	assignments := []catalog.Assignment{
		{ProductID: ptrInt64(8), ProductName: "Erwartet", ProductSKU: "E-1", DefaultQuantity: decimal.NewFromInt(10)},
	}
	items := e.Fold(nil, assignments)

	item := items["id:8"]
	require.NotNil(t, item)
	assert.True(t, item.Placeholder)
	assert.True(t, item.Quantity.IsZero())
	assert.Empty(t, item.History)
}

func TestFoldAssignmentBackfillsBookedItem(t *testing.T) {
	e := newTestEngine(nil)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	rec := record(8, 4, at)
	assignments := []catalog.Assignment{
		{ProductID: ptrInt64(8), ProductName: "Erwartet", ProductSKU: "E-1"},
	}
	items := e.Fold([]movement.Record{rec}, assignments)
	require.Len(t, items, 1)

	item := items["id:8"]
	require.NotNil(t, item)
	// Booked rows never turn into placeholders; quantities stay untouched.
	assert.False(t, item.Placeholder)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "Erwartet", item.Name)
	assert.Equal(t, "E-1", item.SKU)
}

func TestSortOrdersActivityThenPlaceholders(t *testing.T) {
	e := newTestEngine(fakeIndex{
		1: {ID: 1, Name: "Beta"},
		2: {ID: 2, Name: "Alpha"},
	})
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	records := []movement.Record{
		record(2, 1, base.Add(time.Hour)),
		record(1, 1, base),
	}
	assignments := []catalog.Assignment{
		{ProductID: ptrInt64(9), ProductName: "Zulauf"},
		{ProductID: ptrInt64(3), ProductName: "anhang"},
	}

	sorted := Values(e.Fold(records, assignments))
	require.Len(t, sorted, 4)

	// Oldest activity first, placeholders last by name.
	assert.Equal(t, "id:1", sorted[0].Key)
	assert.Equal(t, "id:2", sorted[1].Key)
	assert.Equal(t, "anhang", sorted[2].Name)
	assert.Equal(t, "Zulauf", sorted[3].Name)
}
