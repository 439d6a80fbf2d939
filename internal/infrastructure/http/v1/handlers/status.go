package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"warenbuchung/internal/domain/gate"
	"warenbuchung/internal/domain/session"
	"warenbuchung/internal/infrastructure/http/v1/dto"
)

// StatusHandler serves health and connectivity endpoints.
type StatusHandler struct {
	*BaseHandler
	db      *sql.DB
	gate    *gate.Gate
	session *session.Manager
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(base *BaseHandler, db *sql.DB, g *gate.Gate, manager *session.Manager) *StatusHandler {
	return &StatusHandler{BaseHandler: base, db: db, gate: g, session: manager}
}

// Live handles GET /health/live
func (h *StatusHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready
func (h *StatusHandler) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	resp := dto.StatusResponse{
		Online:        h.gate.Online(),
		Authenticated: h.session.IsAuthenticated(c.Request.Context()),
	}
	if user := h.session.User(); user != nil {
		resp.Username = user.Username
	}
	h.OK(c, resp)
}

// Probe handles POST /status/probe
func (h *StatusHandler) Probe(c *gin.Context) {
	h.gate.Probe(c.Request.Context())
	h.Status(c)
}

// Sync handles POST /status/sync
func (h *StatusHandler) Sync(c *gin.Context) {
	if err := h.gate.SyncDirty(c.Request.Context(), 0); err != nil {
		h.Error(c, err)
		return
	}
	h.Status(c)
}
