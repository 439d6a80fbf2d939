// Package catalog provides the product catalog and cross-reference
// resolution. Products are owned by the remote system and cached locally
// for offline resolution.
package catalog

import (
	"context"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/types"
	"warenbuchung/internal/core/units"
)

// ItemType classifies a product as consumable material or trackable device.
type ItemType string

const (
	ItemMaterial ItemType = "material"
	ItemDevice   ItemType = "device"
)

// Product is a catalog entry. ID is the remote identifier; zero means
// the product has not been registered remotely yet.
type Product struct {
	ID              int64                     `db:"id" json:"id"`
	Name            string                    `db:"name" json:"name"`
	SKU             string                    `db:"sku" json:"sku"`
	Price           types.Money               `db:"price" json:"price"`
	StockQuantity   types.Quantity            `db:"stock_quantity" json:"stockQuantity"`
	LocationStock   map[string]types.Quantity `db:"-" json:"locationStock,omitempty"`
	Unit            string                    `db:"unit" json:"unit"`
	DefaultSupplier string                    `db:"default_supplier" json:"defaultSupplier,omitempty"`
	ItemType        ItemType                  `db:"item_type" json:"itemType"`

	// AutoCreated marks products registered through the unknown-product
	// flow in this session, so views can distinguish them.
	AutoCreated bool `db:"-" json:"autoCreated,omitempty"`
}

// BaseUnit returns the product's base unit, defaulting to Stück.
func (p *Product) BaseUnit() string {
	if p.Unit == "" {
		return units.Stueck
	}
	return p.Unit
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.ItemType != "" && p.ItemType != ItemMaterial && p.ItemType != ItemDevice {
		return apperror.NewValidation("invalid item type").
			WithDetail("field", "itemType").
			WithDetail("value", string(p.ItemType))
	}
	return nil
}

// Assignment links an order or project to an expected product. Used to
// seed aggregation views with zero-quantity placeholders before any
// movement exists. Read-only from this module's perspective.
type Assignment struct {
	ProductID       *int64         `json:"productId,omitempty"`
	ProductName     string         `json:"productName"`
	ProductSKU      string         `json:"productSku,omitempty"`
	DefaultQuantity types.Quantity `json:"defaultQuantity"`
	Unit            string         `json:"unit,omitempty"`
}
