package dto

import (
	"warenbuchung/internal/core/types"
	"warenbuchung/internal/domain/catalog"
)

// ResolveRequest looks up a product by scanned or typed code.
type ResolveRequest struct {
	Code string `form:"code" binding:"required"`
}

// SearchRequest runs a free-text catalog search.
type SearchRequest struct {
	Query string `form:"query" binding:"required"`
}

// CreateUnknownRequest registers a product missing from the catalog.
type CreateUnknownRequest struct {
	Name     string `json:"name" binding:"required"`
	SKU      string `json:"sku"`
	Unit     string `json:"unit"`
	ItemType string `json:"itemType"`
}

// ToProduct converts the request into a catalog draft.
func (r CreateUnknownRequest) ToProduct() *catalog.Product {
	return &catalog.Product{
		Name:     r.Name,
		SKU:      r.SKU,
		Unit:     r.Unit,
		ItemType: catalog.ItemType(r.ItemType),
	}
}

// ProductResponse is the catalog view served to the client.
type ProductResponse struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	SKU             string         `json:"sku"`
	Price           types.Money    `json:"price"`
	StockQuantity   types.Quantity `json:"stockQuantity"`
	Unit            string         `json:"unit"`
	DefaultSupplier string         `json:"defaultSupplier,omitempty"`
	ItemType        string         `json:"itemType"`
	AutoCreated     bool           `json:"autoCreated,omitempty"`
}

// FromProduct creates ProductResponse from a catalog product.
func FromProduct(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		SKU:             p.SKU,
		Price:           p.Price,
		StockQuantity:   p.StockQuantity,
		Unit:            p.BaseUnit(),
		DefaultSupplier: p.DefaultSupplier,
		ItemType:        string(p.ItemType),
		AutoCreated:     p.AutoCreated,
	}
}
