// Package movement provides the goods movement record (Warenbuchung).
// A record is a single immutable goods-in or goods-out event, stored in
// the product's base unit.
package movement

import (
	"context"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/entity"
	"warenbuchung/internal/core/types"
)

// Direction distinguishes goods-in from goods-out records.
type Direction string

const (
	DirectionIn  Direction = "in"  // Wareneingang
	DirectionOut Direction = "out" // Warenausgang
)

// CaptureType classifies how a movement was captured (Erfassungstyp).
// The German labels are wire values shared with persisted notes.
type CaptureType string

const (
	// Goods-in capture types
	CaptureOrder       CaptureType = "Bestellung"
	CaptureProjectSite CaptureType = "Projekt (Baustelle)"
	CaptureWarehouse   CaptureType = "Lager"
	CaptureNoOrder     CaptureType = "Ohne Bestellung"

	// Goods-out capture types. CaptureRebooking shares the "Lager" wire
	// label with CaptureWarehouse; Direction disambiguates.
	CaptureSupplierReturn CaptureType = "Rücksendung Lieferant"
	CaptureProject        CaptureType = "Projekt"
	CaptureRebooking      CaptureType = "Lager"
	CaptureDisposal       CaptureType = "Entsorgung"
)

// Record represents one persisted goods movement.
// Quantity is always stored in the product's base unit; larger entry
// units (Palette) are converted before persistence and annotated in
// Notes so the entered value can be recovered.
type Record struct {
	entity.BaseDocument
	entity.SyncFields

	Direction   Direction   `db:"direction" json:"direction"`
	CaptureType CaptureType `db:"capture_type" json:"erfassungstyp"`

	// Product reference; nil until resolved
	ProductID   *int64 `db:"product_id" json:"productId,omitempty"`
	ProductName string `db:"product_name" json:"productName,omitempty"`
	SKU         string `db:"sku" json:"sku,omitempty"`

	// Quantity in base units (Stück)
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money    `db:"total_price" json:"totalPrice"`

	// Reference string; meaning depends on CaptureType
	// (order number, project key, or transfer pair)
	Reference string `db:"reference" json:"referenz,omitempty"`

	// Notes is the legacy envelope string (see Envelope)
	Notes string `db:"notes" json:"notes,omitempty"`

	Supplier string `db:"supplier" json:"supplier,omitempty"`
	Location string `db:"location" json:"location,omitempty"`
}

// NewRecord creates a movement record with generated ID and timestamps.
func NewRecord(direction Direction, captureType CaptureType) *Record {
	return &Record{
		BaseDocument: entity.NewBaseDocument(),
		Direction:    direction,
		CaptureType:  captureType,
	}
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if !validCaptureType(r.Direction, r.CaptureType) {
		return apperror.NewValidation("invalid capture type for direction").
			WithDetail("field", "erfassungstyp").
			WithDetail("value", string(r.CaptureType))
	}

	if r.Direction == DirectionIn {
		switch r.CaptureType {
		case CaptureOrder, CaptureProjectSite:
			if r.Reference == "" {
				return apperror.NewValidation("reference is required").
					WithDetail("field", "referenz")
			}
		case CaptureWarehouse:
			// Transfers carry their from/to locations in the notes envelope.
			if r.Notes == "" {
				return apperror.NewValidation("transfer requires notes with locations").
					WithDetail("field", "notes")
			}
		}
		return nil
	}

	switch r.CaptureType {
	case CaptureSupplierReturn, CaptureProject:
		if r.Reference == "" {
			return apperror.NewValidation("reference is required").
				WithDetail("field", "referenz")
		}
	case CaptureRebooking:
		if r.Notes == "" {
			return apperror.NewValidation("transfer requires notes with locations").
				WithDetail("field", "notes")
		}
	}

	return nil
}

// CaptureTypesFor returns the closed set of capture types for a direction.
func CaptureTypesFor(direction Direction) []CaptureType {
	if direction == DirectionIn {
		return []CaptureType{CaptureOrder, CaptureProjectSite, CaptureWarehouse, CaptureNoOrder}
	}
	return []CaptureType{CaptureSupplierReturn, CaptureProject, CaptureRebooking, CaptureDisposal}
}

func validCaptureType(direction Direction, ct CaptureType) bool {
	for _, v := range CaptureTypesFor(direction) {
		if v == ct {
			return true
		}
	}
	return false
}
