package remote

import (
	"context"
	"net/http"
	"time"

	"warenbuchung/internal/domain/session"
)

// Compile-time check that Client satisfies the session's remote side.
var _ session.RemoteAuth = (*Client)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string  `json:"token"`
	Expires string  `json:"expires,omitempty"`
	User    userDTO `json:"user"`
}

type userDTO struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	IsActive  bool     `json:"isActive"`
	IsAdmin   bool     `json:"isAdmin"`
	Locations []string `json:"locations,omitempty"`
}

// Login exchanges credentials for a token and the signed-in user.
func (c *Client) Login(ctx context.Context, username, password string) (*session.State, error) {
	var resp authResponse
	req := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, ""); err != nil {
		return nil, err
	}
	return &session.State{
		Token:      resp.Token,
		User:       toUser(&resp.User),
		SignedInAt: time.Now().UTC(),
	}, nil
}

// Me validates a token against the API and returns its user.
func (c *Client) Me(ctx context.Context, token string) (*session.User, error) {
	var dto userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &dto, token); err != nil {
		return nil, err
	}
	user := toUser(&dto)
	return &user, nil
}

func toUser(dto *userDTO) session.User {
	role := "user"
	if dto.IsAdmin {
		role = "admin"
	}
	return session.User{
		ID:        dto.ID,
		Username:  dto.Username,
		Role:      role,
		Locations: dto.Locations,
		IsAdmin:   dto.IsAdmin,
	}
}
