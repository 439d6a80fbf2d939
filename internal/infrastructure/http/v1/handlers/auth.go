package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/domain/session"
	"warenbuchung/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles sign-in and session endpoints.
type AuthHandler struct {
	*BaseHandler
	manager *session.Manager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, manager *session.Manager) *AuthHandler {
	return &AuthHandler{BaseHandler: base, manager: manager}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.manager.Login(ctx, req.Username, req.Password); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(h.manager.User()))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.manager.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := h.manager.User()
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("not signed in"))
		return
	}
	c.JSON(http.StatusOK, dto.FromUser(user))
}
