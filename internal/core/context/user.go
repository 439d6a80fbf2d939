// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains the signed-in warehouse user.
type UserContext struct {
	UserID    string
	Username  string
	Role      string
	Locations []string // Default stock locations the user books against
	IsAdmin   bool
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetUsername returns the username from context or empty string.
func GetUsername(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Username
	}
	return ""
}

// DefaultLocation returns the user's first default location, if any.
func DefaultLocation(ctx context.Context) string {
	u := GetUser(ctx)
	if u == nil || len(u.Locations) == 0 {
		return ""
	}
	return u.Locations[0]
}

// HasLocation checks if the user may book against the given location.
func HasLocation(ctx context.Context, location string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	if u.IsAdmin {
		return true
	}
	for _, l := range u.Locations {
		if l == location {
			return true
		}
	}
	return false
}
