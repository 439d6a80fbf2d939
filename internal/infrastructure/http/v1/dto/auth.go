package dto

import "warenbuchung/internal/domain/session"

// LoginRequest for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	Username  string   `json:"username"`
	Role      string   `json:"role"`
	Locations []string `json:"locations,omitempty"`
	IsAdmin   bool     `json:"isAdmin"`
}

// FromUser creates SessionResponse from a session user.
func FromUser(u *session.User) SessionResponse {
	return SessionResponse{
		Username:  u.Username,
		Role:      u.Role,
		Locations: u.Locations,
		IsAdmin:   u.IsAdmin,
	}
}
