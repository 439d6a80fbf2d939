package catalog

import (
	"context"
	"strings"
	"sync"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/types"
	"warenbuchung/internal/core/units"
	"warenbuchung/pkg/logger"
)

// RemoteCatalog is the remote product endpoint the resolver falls back to.
type RemoteCatalog interface {
	FetchProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
}

// Store is the local product cache for offline resolution.
type Store interface {
	SaveProducts(ctx context.Context, products []Product) error
	ListProducts(ctx context.Context) ([]Product, error)
}

// Resolver matches user-entered or scanned product codes against the
// session cache, falling back to a remote fetch, and finally to the
// unknown-product creation flow.
type Resolver struct {
	mu     sync.RWMutex
	byID   map[int64]*Product
	bySKU  map[string]*Product // key: lowercased SKU
	byName map[string]*Product // key: lowercased name

	remote RemoteCatalog
	store  Store
}

// NewResolver creates a resolver with an empty session cache.
func NewResolver(remote RemoteCatalog, store Store) *Resolver {
	return &Resolver{
		byID:   make(map[int64]*Product),
		bySKU:  make(map[string]*Product),
		byName: make(map[string]*Product),
		remote: remote,
		store:  store,
	}
}

// Prime folds a product list into the session cache.
func (r *Resolver) Prime(products []Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range products {
		r.index(&products[i])
	}
}

// index must be called with r.mu held.
func (r *Resolver) index(p *Product) {
	cp := *p
	if cp.ID != 0 {
		r.byID[cp.ID] = &cp
	}
	if cp.SKU != "" {
		r.bySKU[strings.ToLower(cp.SKU)] = &cp
	}
	if cp.Name != "" {
		r.byName[strings.ToLower(cp.Name)] = &cp
	}
}

// ByID resolves a product by remote id from the session cache only.
func (r *Resolver) ByID(productID int64) (*Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[productID]
	return p, ok
}

// Resolve matches a code (SKU or name) against the cache, then the
// remote catalog. Returns a NOT_FOUND error when neither knows the
// code; callers route that into the unknown-product creation flow.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.NewValidation("product code is required").
			WithDetail("field", "code")
	}

	if p, ok := r.lookup(code); ok {
		return p, nil
	}

	// Cache miss: refresh from remote and retry once.
	products, err := r.remote.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	r.Prime(products)
	if r.store != nil {
		if err := r.store.SaveProducts(ctx, products); err != nil {
			logger.Warn(ctx, "product cache refresh failed", "error", err)
		}
	}

	if p, ok := r.lookup(code); ok {
		return p, nil
	}

	return nil, apperror.NewNotFound("product", code)
}

func (r *Resolver) lookup(code string) (*Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := strings.ToLower(code)
	if p, ok := r.bySKU[key]; ok {
		return p, true
	}
	if p, ok := r.byName[key]; ok {
		return p, true
	}
	return nil, false
}

// CreateUnknown registers a product that could not be resolved. Name is
// required; unit, price and stock fall back to defaults. The created
// product is flagged AutoCreated and resolvable for the rest of the
// session.
func (r *Resolver) CreateUnknown(ctx context.Context, draft Product) (*Product, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if draft.Unit == "" {
		draft.Unit = units.Stueck
	}
	if draft.ItemType == "" {
		draft.ItemType = ItemMaterial
	}
	if draft.Price.IsZero() {
		draft.Price = types.Zero()
	}
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}

	created, err := r.remote.CreateProduct(ctx, &draft)
	if err != nil {
		// The staged movement stays unresolved; nothing was cached.
		return nil, err
	}
	created.AutoCreated = true

	r.mu.Lock()
	r.index(created)
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveProducts(ctx, []Product{*created}); err != nil {
			logger.Warn(ctx, "caching created product failed", "error", err, "sku", created.SKU)
		}
	}

	logger.Info(ctx, "unknown product registered",
		"product_id", created.ID,
		"name", created.Name)

	return created, nil
}
