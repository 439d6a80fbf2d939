package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"warenbuchung/internal/domain/catalog"
)

// Compile-time check that Client satisfies the resolver's remote side.
var _ catalog.RemoteCatalog = (*Client)(nil)

type productDTO struct {
	ID              int64      `json:"id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	SKU             string     `json:"sku"`
	Price           float64    `json:"price"`
	StockQuantity   float64    `json:"stockQuantity"`
	LocationStock   float64    `json:"locationStock"`
	Unit            string     `json:"unit,omitempty"`
	DefaultSupplier string     `json:"defaultSupplier,omitempty"`
	ItemType        string     `json:"itemType,omitempty"`
	CreatedAt       time.Time  `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// FetchProducts downloads the full product catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/products", nil, &dtos, ""); err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(dtos))
	for i := range dtos {
		products = append(products, toProduct(&dtos[i]))
	}
	return products, nil
}

// SearchProducts runs a server-side catalog search.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	path := "/products/search?query=" + url.QueryEscape(query)
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos, ""); err != nil {
		return nil, err
	}
	products := make([]catalog.Product, 0, len(dtos))
	for i := range dtos {
		products = append(products, toProduct(&dtos[i]))
	}
	return products, nil
}

// CreateProduct registers a product and returns it with its assigned
// id.
func (c *Client) CreateProduct(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	req := productDTO{
		Name:            p.Name,
		SKU:             p.SKU,
		Price:           p.Price.InexactFloat64(),
		StockQuantity:   p.StockQuantity.InexactFloat64(),
		Unit:            p.Unit,
		DefaultSupplier: p.DefaultSupplier,
		ItemType:        string(p.ItemType),
	}
	var resp productDTO
	if err := c.do(ctx, http.MethodPost, "/products", req, &resp, ""); err != nil {
		return nil, err
	}
	created := toProduct(&resp)
	return &created, nil
}

func toProduct(dto *productDTO) catalog.Product {
	return catalog.Product{
		ID:              dto.ID,
		Name:            dto.Name,
		SKU:             dto.SKU,
		Price:           decimal.NewFromFloat(dto.Price),
		StockQuantity:   decimal.NewFromFloat(dto.StockQuantity),
		Unit:            dto.Unit,
		DefaultSupplier: dto.DefaultSupplier,
		ItemType:        catalog.ItemType(dto.ItemType),
	}
}
