package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tvtrack/internal/models"
	"github.com/desertthunder/tvtrack/internal/shared"
	"golang.org/x/oauth2"
)

// Session is the signed-in identity together with its OAuth token.
type Session struct {
	ID        string
	Identity  models.Identity
	Token     *oauth2.Token
	CreatedAt time.Time
}

// SessionRepository keeps at most one active session.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save soft-deletes any active session and stores a new one for identity.
func (r *SessionRepository) Save(identity models.Identity, token *oauth2.Token) (*Session, error) {
	if !identity.SignedIn() {
		return nil, fmt.Errorf("%w: identity has no uid", shared.ErrInvalidArgument)
	}
	if token == nil {
		token = &oauth2.Token{}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.Exec("UPDATE sessions SET deleted_at = ? WHERE deleted_at IS NULL", now); err != nil {
		return nil, fmt.Errorf("%w: failed to close previous session: %v", shared.ErrPersistence, err)
	}

	var expiry sql.NullTime
	if !token.Expiry.IsZero() {
		expiry = sql.NullTime{Time: token.Expiry, Valid: true}
	}

	session := &Session{ID: shared.GenerateID(), Identity: identity, Token: token, CreatedAt: now}
	query := `
		INSERT INTO sessions (
			id, uid, display_name, email, access_token, refresh_token, token_type, expiry, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query, session.ID, identity.UID, identity.DisplayName, identity.Email,
		token.AccessToken, token.RefreshToken, token.TokenType, expiry, now)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert session: %v", shared.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit session: %v", shared.ErrPersistence, err)
	}

	return session, nil
}

// Get returns the active session. Returns [shared.ErrNotAuthenticated] when signed out.
func (r *SessionRepository) Get() (*Session, error) {
	query := `
		SELECT id, uid, display_name, email, access_token, refresh_token, token_type, expiry, created_at
		FROM sessions
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		session = Session{Token: &oauth2.Token{}}
		expiry  sql.NullTime
	)

	err := r.db.QueryRow(query).Scan(
		&session.ID, &session.Identity.UID, &session.Identity.DisplayName, &session.Identity.Email,
		&session.Token.AccessToken, &session.Token.RefreshToken, &session.Token.TokenType, &expiry, &session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query session: %v", shared.ErrPersistence, err)
	}

	if expiry.Valid {
		session.Token.Expiry = expiry.Time
	}

	return &session, nil
}

// UpdateToken stores a refreshed token on the active session.
func (r *SessionRepository) UpdateToken(token *oauth2.Token) error {
	var expiry sql.NullTime
	if !token.Expiry.IsZero() {
		expiry = sql.NullTime{Time: token.Expiry, Valid: true}
	}

	query := `
		UPDATE sessions
		SET access_token = ?, refresh_token = ?, token_type = ?, expiry = ?
		WHERE deleted_at IS NULL
	`

	result, err := r.db.Exec(query, token.AccessToken, token.RefreshToken, token.TokenType, expiry)
	if err != nil {
		return fmt.Errorf("%w: failed to update token: %v", shared.ErrPersistence, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrPersistence, err)
	}
	if rows == 0 {
		return shared.ErrNotAuthenticated
	}
	return nil
}

// Clear soft-deletes the active session. Clearing when signed out is a no-op.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("UPDATE sessions SET deleted_at = ? WHERE deleted_at IS NULL", time.Now()); err != nil {
		return fmt.Errorf("%w: failed to clear session: %v", shared.ErrPersistence, err)
	}
	return nil
}
