package aggregate

import (
	"sort"
	"strings"
	"time"

	"warenbuchung/internal/core/id"
	"warenbuchung/internal/core/types"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/movement"
)

// Booking is one contribution to an aggregated item's history.
type Booking struct {
	RecordID  id.ID          `json:"recordId"`
	ServerID  *int64         `json:"serverId,omitempty"`
	Quantity  types.Quantity `json:"quantity"`
	Unit      string         `json:"unit"`
	Timestamp time.Time      `json:"timestamp"`
}

// Item is the derived per-product view within one grouping scope.
// Never persisted; recomputed whenever the underlying record list
// changes.
type Item struct {
	Key       string           `json:"key"`
	ProductID *int64           `json:"productId,omitempty"`
	Name      string           `json:"name"`
	SKU       string           `json:"sku,omitempty"`
	Unit      string           `json:"unit"`
	ItemType  catalog.ItemType `json:"itemType"`

	// Quantity is the running total of normalized quantities.
	Quantity types.Quantity `json:"quantity"`

	// History holds contributing bookings in encounter order.
	History []Booking `json:"history"`

	// LastBooking tracks the most recent contribution by timestamp.
	LastBooking *Booking `json:"lastBooking,omitempty"`

	// Placeholder marks assignment-seeded rows with no bookings yet.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Engine folds movement records sharing a grouping scope into one
// aggregated item per distinct product key.
type Engine struct {
	normalizer *Normalizer
}

// NewEngine creates an aggregation engine.
func NewEngine(normalizer *Normalizer) *Engine {
	return &Engine{normalizer: normalizer}
}

// Fold aggregates records and seeds placeholders from assignments.
// Pure with respect to its inputs: folding the same list twice yields
// identical results.
func (e *Engine) Fold(records []movement.Record, assignments []catalog.Assignment) map[string]*Item {
	items := make(map[string]*Item)

	for i := range records {
		n := e.normalizer.Normalize(&records[i])

		item, ok := items[n.Key]
		if !ok {
			item = &Item{
				Key:       n.Key,
				ProductID: n.Record.ProductID,
				Name:      n.Name,
				SKU:       n.SKU,
				Unit:      n.Unit,
				ItemType:  n.ItemType,
				Quantity:  types.Zero(),
			}
			items[n.Key] = item
		}

		item.Quantity = item.Quantity.Add(n.Quantity)

		booking := Booking{
			RecordID:  n.Record.ID,
			ServerID:  n.Record.ServerID,
			Quantity:  n.Quantity,
			Unit:      n.Unit,
			Timestamp: n.Timestamp,
		}
		item.History = append(item.History, booking)

		// Strictly newer wins; on equal timestamps the earlier encounter
		// is kept for determinism.
		if item.LastBooking == nil || booking.Timestamp.After(item.LastBooking.Timestamp) {
			b := booking
			item.LastBooking = &b
		}
	}

	for _, a := range assignments {
		key := Key(a.ProductID, a.ProductSKU, a.ProductName)
		if item, ok := items[key]; ok {
			// Backfill descriptive fields only; never touch quantities
			// or history.
			if item.Name == "" {
				item.Name = a.ProductName
			}
			if item.SKU == "" {
				item.SKU = a.ProductSKU
			}
			if item.Unit == "" && a.Unit != "" {
				item.Unit = a.Unit
			}
			continue
		}
		items[key] = &Item{
			Key:         key,
			ProductID:   a.ProductID,
			Name:        a.ProductName,
			SKU:         a.ProductSKU,
			Unit:        a.Unit,
			ItemType:    catalog.ItemMaterial,
			Quantity:    types.Zero(),
			Placeholder: true,
		}
	}

	return items
}

// sortTimestamp returns the ordering key for presentation: last booking
// timestamp, falling back to the first booking, with empty placeholders
// sorting last.
func sortTimestamp(item *Item) (time.Time, bool) {
	if item.LastBooking != nil {
		return item.LastBooking.Timestamp, true
	}
	if len(item.History) > 0 {
		return item.History[0].Timestamp, true
	}
	return time.Time{}, false
}

// Sort orders items for presentation: oldest booking activity first,
// never-booked placeholders last, ties broken by case-insensitive name.
// Pure function; the fold itself imposes no ordering.
func Sort(items []*Item) []*Item {
	sorted := make([]*Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, iok := sortTimestamp(sorted[i])
		tj, jok := sortTimestamp(sorted[j])
		switch {
		case iok && !jok:
			return true
		case !iok && jok:
			return false
		case iok && jok && !ti.Equal(tj):
			return ti.Before(tj)
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	return sorted
}

// Values collects the folded map into a slice, sorted for presentation.
func Values(items map[string]*Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return Sort(out)
}
