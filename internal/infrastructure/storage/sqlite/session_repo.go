package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"warenbuchung/internal/domain/session"
)

// Compile-time check that SessionRepo satisfies the session store.
var _ session.Store = (*SessionRepo)(nil)

// SessionRepo persists the single session snapshot so the app can
// restart offline and still verify credentials.
type SessionRepo struct {
	txManager *TxManager
}

// NewSessionRepo creates a session repository.
func NewSessionRepo(txManager *TxManager) *SessionRepo {
	return &SessionRepo{txManager: txManager}
}

// SaveSession upserts the session snapshot (single row).
func (r *SessionRepo) SaveSession(ctx context.Context, s *session.State) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	_, err = querier.ExecContext(ctx,
		`INSERT INTO session (id, token, user_json, password_hash, signed_in_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			password_hash = excluded.password_hash,
			signed_in_at = excluded.signed_in_at`,
		s.Token, string(userJSON), s.PasswordHash, s.SignedInAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted snapshot, or nil when none exists.
func (r *SessionRepo) LoadSession(ctx context.Context) (*session.State, error) {
	querier := r.txManager.GetQuerier(ctx)
	row := querier.QueryRowContext(ctx,
		`SELECT token, user_json, password_hash, signed_in_at FROM session WHERE id = 1`)

	var (
		token      string
		userJSON   string
		hash       []byte
		signedInAt sql.NullTime
	)
	if err := row.Scan(&token, &userJSON, &hash, &signedInAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	state := &session.State{Token: token, PasswordHash: hash}
	if err := json.Unmarshal([]byte(userJSON), &state.User); err != nil {
		return nil, fmt.Errorf("unmarshal session user: %w", err)
	}
	if signedInAt.Valid {
		state.SignedInAt = signedInAt.Time
	} else {
		state.SignedInAt = time.Time{}
	}
	return state, nil
}
