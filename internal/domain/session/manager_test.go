package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warenbuchung/internal/core/apperror"
)

type fakeRemoteAuth struct {
	state    *State
	loginErr error
	logins   int
}

func (f *fakeRemoteAuth) Login(ctx context.Context, username, password string) (*State, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	cp := *f.state
	return &cp, nil
}

func (f *fakeRemoteAuth) Me(ctx context.Context, token string) (*User, error) {
	if f.state == nil {
		return nil, apperror.NewUnauthorized("no session")
	}
	u := f.state.User
	return &u, nil
}

type fakeSessionStore struct {
	state   *State
	loadErr error
}

func (f *fakeSessionStore) SaveSession(ctx context.Context, s *State) error {
	cp := *s
	f.state = &cp
	return nil
}

func (f *fakeSessionStore) LoadSession(ctx context.Context) (*State, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.state == nil {
		return nil, nil
	}
	cp := *f.state
	return &cp, nil
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiresAt)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestLoginOnlineCachesCredentials(t *testing.T) {
	remote := &fakeRemoteAuth{state: &State{
		Token: "token-1",
		User:  User{ID: 1, Username: "mmeier"},
	}}
	store := &fakeSessionStore{}
	m := NewManager(remote, store)

	require.NoError(t, m.Login(context.Background(), "mmeier", "geheim"))
	assert.Equal(t, "token-1", m.Token())
	require.NotNil(t, m.User())
	assert.Equal(t, "mmeier", m.User().Username)

	// The persisted snapshot carries a usable credential hash.
	require.NotNil(t, store.state)
	assert.NotEmpty(t, store.state.PasswordHash)
}

func TestLoginOfflineFallback(t *testing.T) {
	remote := &fakeRemoteAuth{state: &State{Token: "token-1", User: User{ID: 1, Username: "mmeier"}}}
	store := &fakeSessionStore{}
	m := NewManager(remote, store)
	require.NoError(t, m.Login(context.Background(), "mmeier", "geheim"))
	m.Logout(context.Background())

	// Remote is unreachable now; the cached hash lets the same user back in.
	remote.loginErr = apperror.NewOffline("sign in")
	require.NoError(t, m.Login(context.Background(), "MMeier", "geheim"))
	require.NotNil(t, m.User())
	assert.Equal(t, "mmeier", m.User().Username)
}

func TestLoginOfflineRejectsWrongPassword(t *testing.T) {
	remote := &fakeRemoteAuth{state: &State{Token: "token-1", User: User{Username: "mmeier"}}}
	store := &fakeSessionStore{}
	m := NewManager(remote, store)
	require.NoError(t, m.Login(context.Background(), "mmeier", "geheim"))
	m.Logout(context.Background())

	remote.loginErr = apperror.NewOffline("sign in")
	err := m.Login(context.Background(), "mmeier", "falsch")
	assert.True(t, apperror.IsUnauthorized(err))
	assert.Nil(t, m.User())
}

func TestLoginOfflineRejectsDifferentUser(t *testing.T) {
	remote := &fakeRemoteAuth{state: &State{Token: "token-1", User: User{Username: "mmeier"}}}
	store := &fakeSessionStore{}
	m := NewManager(remote, store)
	require.NoError(t, m.Login(context.Background(), "mmeier", "geheim"))
	m.Logout(context.Background())

	remote.loginErr = apperror.NewOffline("sign in")
	err := m.Login(context.Background(), "anderer", "geheim")
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestLoginWrongCredentialsNoFallback(t *testing.T) {
	remote := &fakeRemoteAuth{state: &State{Token: "token-1", User: User{Username: "mmeier"}}}
	store := &fakeSessionStore{}
	m := NewManager(remote, store)
	require.NoError(t, m.Login(context.Background(), "mmeier", "geheim"))
	m.Logout(context.Background())

	// An explicit remote rejection must not be rescued by the cache, even
	// though the cached hash would match.
	remote.loginErr = apperror.NewUnauthorized("invalid credentials")
	err := m.Login(context.Background(), "mmeier", "geheim")
	assert.True(t, apperror.IsUnauthorized(err))
	assert.Nil(t, m.User())
}

func TestLoginWithoutRemoteConfigured(t *testing.T) {
	m := NewManager(nil, nil)
	err := m.Login(context.Background(), "mmeier", "geheim")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInternal, appErr.Code)
}

func TestLoginValidatesInput(t *testing.T) {
	m := NewManager(&fakeRemoteAuth{}, nil)
	assert.True(t, apperror.IsValidation(m.Login(context.Background(), " ", "pw")))
	assert.True(t, apperror.IsValidation(m.Login(context.Background(), "user", "")))
}

func TestRestore(t *testing.T) {
	store := &fakeSessionStore{state: &State{Token: "token-1", User: User{Username: "mmeier"}}}
	m := NewManager(nil, store)
	m.Restore(context.Background())
	require.NotNil(t, m.User())
	assert.Equal(t, "mmeier", m.User().Username)
}

func TestIsAuthenticated(t *testing.T) {
	m := NewManager(nil, nil)
	ctx := context.Background()

	assert.False(t, m.IsAuthenticated(ctx), "no session")

	m.state = &State{Token: signedToken(t, time.Now().Add(time.Hour))}
	assert.True(t, m.IsAuthenticated(ctx), "unexpired token")

	m.state = &State{Token: signedToken(t, time.Now().Add(-time.Hour))}
	assert.False(t, m.IsAuthenticated(ctx), "expired token")

	// Within the clock-skew leeway the token still counts.
	m.state = &State{Token: signedToken(t, time.Now().Add(-10 * time.Second))}
	assert.True(t, m.IsAuthenticated(ctx), "expiry within skew")

	m.state = &State{Token: "opaque-offline-token"}
	assert.True(t, m.IsAuthenticated(ctx), "opaque token")
}
