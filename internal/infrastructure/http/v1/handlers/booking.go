package handlers

import (
	"github.com/gin-gonic/gin"

	"warenbuchung/internal/domain/booking"
	"warenbuchung/internal/infrastructure/http/v1/dto"
)

// BookingHandler serves the aggregated views and staging operations
// for both movement directions.
type BookingHandler struct {
	*BaseHandler
	service *booking.Service
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(base *BaseHandler, service *booking.Service) *BookingHandler {
	return &BookingHandler{BaseHandler: base, service: service}
}

func (h *BookingHandler) bindScope(c *gin.Context) (booking.Scope, bool) {
	var req dto.ScopeRequest
	if !h.BindQuery(c, &req) {
		return booking.Scope{}, false
	}
	return req.ToScope(), true
}

// Aggregated handles GET /bookings/aggregated
func (h *BookingHandler) Aggregated(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	items, err := h.service.Aggregated(c.Request.Context(), scope)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Staging handles GET /bookings/staging
func (h *BookingHandler) Staging(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	if err := h.service.LoadStaging(c.Request.Context(), scope); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StagedItems(h.service.Area(scope)))
}

// SetMeta handles PUT /bookings/staging/meta
func (h *BookingHandler) SetMeta(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req dto.MetaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.service.SetMeta(scope, req.ToMeta())
	h.OK(c, dto.StagedItems(h.service.Area(scope)))
}

// Stage handles POST /bookings/staging/items
func (h *BookingHandler) Stage(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req dto.StageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if _, err := h.service.Stage(c.Request.Context(), scope, req.Code); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StagedItems(h.service.Area(scope)))
}

// AdjustQuantity handles POST /bookings/staging/adjust
func (h *BookingHandler) AdjustQuantity(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req dto.AdjustQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	area := h.service.Area(scope)
	area.AdjustQuantity(req.Key, req.Delta)
	h.OK(c, dto.StagedItems(area))
}

// SetQuantity handles POST /bookings/staging/quantity
func (h *BookingHandler) SetQuantity(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req dto.SetQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	area := h.service.Area(scope)
	area.SetQuantity(req.Key, req.Text)
	h.OK(c, dto.StagedItems(area))
}

// Commit handles POST /bookings/staging/commit
func (h *BookingHandler) Commit(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req dto.KeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.Commit(c.Request.Context(), scope, req.Key)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CommitResponse{
		Record: record,
		Items:  dto.StagedItems(h.service.Area(scope)),
	})
}

// Discard handles POST /bookings/staging/discard
func (h *BookingHandler) Discard(c *gin.Context) {
	scope, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req dto.KeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Discard(c.Request.Context(), scope, req.Key); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StagedItems(h.service.Area(scope)))
}
