package sqlite

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/sqlscan"

	"warenbuchung/internal/domain/catalog"
)

// Compile-time check that ProductRepo satisfies the resolver's store.
var _ catalog.Store = (*ProductRepo)(nil)

var productCols = []string{
	"id", "name", "sku", "price", "stock_quantity",
	"unit", "default_supplier", "item_type",
}

// ProductRepo caches the remote product catalog locally for offline
// resolution.
type ProductRepo struct {
	txManager *TxManager
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{txManager: txManager}
}

// SaveProducts upserts catalog entries by their remote id.
func (r *ProductRepo) SaveProducts(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)
		for i := range products {
			p := &products[i]
			q := builder().
				Insert("products").
				SetMap(map[string]any{
					"id":               p.ID,
					"name":             p.Name,
					"sku":              p.SKU,
					"price":            p.Price.String(),
					"stock_quantity":   p.StockQuantity.String(),
					"unit":             p.Unit,
					"default_supplier": p.DefaultSupplier,
					"item_type":        string(p.ItemType),
				}).
				Suffix(`ON CONFLICT(id) DO UPDATE SET
					name = excluded.name,
					sku = excluded.sku,
					price = excluded.price,
					stock_quantity = excluded.stock_quantity,
					unit = excluded.unit,
					default_supplier = excluded.default_supplier,
					item_type = excluded.item_type`)

			sqlStr, args, err := q.ToSql()
			if err != nil {
				return fmt.Errorf("build product upsert: %w", err)
			}
			if _, err := querier.ExecContext(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("upsert product %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// ListProducts returns all cached catalog entries.
func (r *ProductRepo) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	sel := builder().
		Select(productCols...).
		From("products").
		OrderBy("name ASC")

	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product select: %w", err)
	}

	var products []catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := sqlscan.Select(ctx, querier, &products, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}
