// Package session tracks the signed-in user and bearer token, including
// offline sign-in against a cached credential hash.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/pkg/logger"
)

// User is the stored user consulted for default locations and admin
// status.
type User struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Role      string   `json:"role"`
	Locations []string `json:"locations,omitempty"`
	IsAdmin   bool     `json:"isAdmin"`
}

// State is the persisted session snapshot.
type State struct {
	Token        string    `json:"token"`
	User         User      `json:"user"`
	PasswordHash []byte    `json:"-"`
	SignedInAt   time.Time `json:"signedInAt"`
}

// RemoteAuth is the remote auth endpoint set.
type RemoteAuth interface {
	Login(ctx context.Context, username, password string) (*State, error)
	Me(ctx context.Context, token string) (*User, error)
}

// Store persists the session locally so the app can restart offline.
type Store interface {
	SaveSession(ctx context.Context, s *State) error
	LoadSession(ctx context.Context) (*State, error)
}

// Manager holds the current session.
type Manager struct {
	mu     sync.RWMutex
	state  *State
	remote RemoteAuth
	store  Store

	// clockSkew is the leeway applied to token expiry checks.
	clockSkew time.Duration
}

// NewManager creates a session manager without a signed-in user.
func NewManager(remote RemoteAuth, store Store) *Manager {
	return &Manager{remote: remote, store: store, clockSkew: 30 * time.Second}
}

// SetRemote installs the auth endpoint set. The API client needs the
// manager as its token source, so the two are wired in stages.
func (m *Manager) SetRemote(remote RemoteAuth) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = remote
}

// Restore loads a previously persisted session, if any.
func (m *Manager) Restore(ctx context.Context) {
	if m.store == nil {
		return
	}
	state, err := m.store.LoadSession(ctx)
	if err != nil || state == nil {
		return
	}
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
	logger.Info(ctx, "session restored", "user", state.User.Username)
}

// Login signs in remotely; when the remote system is unreachable it
// falls back to verifying the password against the cached hash from the
// last successful online sign-in.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperror.NewValidation("username and password are required")
	}

	m.mu.RLock()
	remote := m.remote
	m.mu.RUnlock()
	if remote == nil {
		return apperror.NewInternal(errors.New("remote auth not configured"))
	}

	state, err := remote.Login(ctx, username, password)
	if err == nil {
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if herr == nil {
			state.PasswordHash = hash
		}
		state.SignedInAt = time.Now().UTC()
		m.mu.Lock()
		m.state = state
		m.mu.Unlock()
		if m.store != nil {
			if serr := m.store.SaveSession(ctx, state); serr != nil {
				logger.Warn(ctx, "persisting session failed", "error", serr)
			}
		}
		logger.Info(ctx, "signed in", "user", state.User.Username)
		return nil
	}

	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeUnauthorized {
		// Wrong credentials, no offline fallback.
		return err
	}

	return m.offlineLogin(ctx, username, password, err)
}

func (m *Manager) offlineLogin(ctx context.Context, username, password string, cause error) error {
	if m.store == nil {
		return cause
	}
	cached, err := m.store.LoadSession(ctx)
	if err != nil || cached == nil || len(cached.PasswordHash) == 0 {
		return cause
	}
	if !strings.EqualFold(cached.User.Username, username) {
		return apperror.NewUnauthorized("offline sign-in is only available for the last online user")
	}
	if bcrypt.CompareHashAndPassword(cached.PasswordHash, []byte(password)) != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}

	m.mu.Lock()
	m.state = cached
	m.mu.Unlock()
	logger.Info(ctx, "signed in offline", "user", cached.User.Username)
	return nil
}

// Logout drops the in-memory session.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state = nil
	m.mu.Unlock()
	logger.Info(ctx, "signed out")
}

// Token returns the current bearer token, or empty string.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return ""
	}
	return m.state.Token
}

// User returns the stored user, or nil.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil
	}
	u := m.state.User
	return &u
}

// IsAuthenticated reports whether a token is present and unexpired.
// The token is not signature-verified here; the remote system remains
// the authority and rejects stale tokens on use.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	token := m.Token()
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		// Opaque tokens (offline sessions) stay usable locally.
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Now().Before(claims.ExpiresAt.Time.Add(m.clockSkew))
}
