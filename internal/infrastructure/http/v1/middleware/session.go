package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"warenbuchung/internal/core/apperror"
	appctx "warenbuchung/internal/core/context"
	"warenbuchung/internal/domain/session"
)

// Session injects the signed-in user into the request context. The
// session is app-global; requests carry no credentials of their own.
func Session(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := manager.User()
		if user != nil {
			userCtx := &appctx.UserContext{
				UserID:    fmt.Sprintf("%d", user.ID),
				Username:  user.Username,
				Role:      user.Role,
				Locations: user.Locations,
				IsAdmin:   user.IsAdmin,
			}
			ctx := appctx.WithUser(c.Request.Context(), userCtx)
			c.Request = c.Request.WithContext(ctx)
			c.Set("user_id", userCtx.UserID)
		}
		c.Next()
	}
}

// RequireSession rejects requests while nobody is signed in. Offline
// operation with a restored session still passes.
func RequireSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager.User() == nil {
			_ = c.Error(apperror.NewUnauthorized("not signed in"))
			c.Abort()
			return
		}
		c.Next()
	}
}
