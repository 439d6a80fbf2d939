package handlers

import (
	"github.com/gin-gonic/gin"

	"warenbuchung/internal/domain/settings"
)

// SettingsHandler serves the configurable goods-out pick lists.
type SettingsHandler struct {
	*BaseHandler
	service *settings.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base, service: service}
}

// Reasons handles GET /settings/reasons
func (h *SettingsHandler) Reasons(c *gin.Context) {
	reasons, err := h.service.ActiveReasons(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, reasons)
}

// Justifications handles GET /settings/justifications
func (h *SettingsHandler) Justifications(c *gin.Context) {
	justifications, err := h.service.ActiveJustifications(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, justifications)
}
