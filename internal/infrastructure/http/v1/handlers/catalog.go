package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/infrastructure/http/v1/dto"
)

// Searcher runs server-side catalog searches (exact-code resolution
// stays with the resolver).
type Searcher interface {
	SearchProducts(ctx context.Context, query string) ([]catalog.Product, error)
}

// CatalogHandler serves product resolution endpoints.
type CatalogHandler struct {
	*BaseHandler
	resolver *catalog.Resolver
	searcher Searcher
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, resolver *catalog.Resolver, searcher Searcher) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, resolver: resolver, searcher: searcher}
}

// Resolve handles GET /products/resolve
func (h *CatalogHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if !h.BindQuery(c, &req) {
		return
	}

	product, err := h.resolver.Resolve(c.Request.Context(), req.Code)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(product))
}

// Search handles GET /products/search
func (h *CatalogHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if !h.BindQuery(c, &req) {
		return
	}

	products, err := h.searcher.SearchProducts(c.Request.Context(), req.Query)
	if err != nil {
		h.Error(c, err)
		return
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, dto.FromProduct(&products[i]))
	}
	h.OK(c, out)
}

// CreateUnknown handles POST /products/unknown
func (h *CatalogHandler) CreateUnknown(c *gin.Context) {
	var req dto.CreateUnknownRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.resolver.CreateUnknown(c.Request.Context(), *req.ToProduct())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(product))
}
