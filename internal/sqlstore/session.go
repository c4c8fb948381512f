package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
	"github.com/capstonehub/capstone-hub/internal/repository"
)

// SessionRepository implements session.Repository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	query := `
		SELECT id, authenticated, role, csrf_token, created_at, login_at, last_seen
		FROM sessions
		WHERE id = ?
	`

	var sess session.Session
	var role string
	var loginAt sql.NullTime
	err := r.db.queryRow(ctx, query, id).Scan(
		&sess.ID,
		&sess.Authenticated,
		&role,
		&sess.CSRFToken,
		&sess.CreatedAt,
		&loginAt,
		&sess.LastSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	sess.Role = auth.Role(role)
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.LastSeen = sess.LastSeen.UTC()
	if loginAt.Valid {
		t := loginAt.Time.UTC()
		sess.LoginAt = &t
	}
	return &sess, nil
}

// Save inserts or replaces a session
func (r *SessionRepository) Save(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (id, authenticated, role, csrf_token, created_at, login_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			authenticated = excluded.authenticated,
			role = excluded.role,
			csrf_token = excluded.csrf_token,
			login_at = excluded.login_at,
			last_seen = excluded.last_seen
	`

	var loginAt any
	if sess.LoginAt != nil {
		loginAt = *sess.LoginAt
	}

	_, err := r.db.exec(ctx, query,
		sess.ID,
		sess.Authenticated,
		string(sess.Role),
		sess.CSRFToken,
		sess.CreatedAt,
		loginAt,
		sess.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(result)
}

// DeleteIdleBefore removes sessions last seen before cutoff
func (r *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.exec(ctx, `DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
