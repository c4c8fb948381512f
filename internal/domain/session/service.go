package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/repository"
)

// DefaultIdleTimeout is the inactivity period after which a session is cleared.
const DefaultIdleTimeout = 30 * time.Minute

// Config configures the session service.
type Config struct {
	IdleTimeout time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service handles session lifecycle, idle expiry and CSRF binding.
type Service struct {
	repo   Repository
	idle   time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a new session service.
func NewService(repo Repository, cfg Config, logger *slog.Logger) *Service {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, idle: cfg.IdleTimeout, now: cfg.Clock, logger: logger}
}

// IdleTimeout returns the configured inactivity limit.
func (s *Service) IdleTimeout() time.Duration {
	return s.idle
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// New returns an anonymous session that is not yet stored.
func (s *Service) New() *Session {
	return &Session{CreatedAt: s.now()}
}

// Load returns the stored session for id, or a fresh anonymous session when
// id is empty or unknown.
func (s *Service) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return s.New(), nil
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.New(), nil
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.persisted = true
	return sess, nil
}

// CheckIdle clears a stored session whose last activity is older than the
// idle timeout and reports whether it did. Call it before Touch.
func (s *Service) CheckIdle(sess *Session) bool {
	if !sess.persisted || sess.LastSeen.IsZero() {
		return false
	}
	if s.now().Sub(sess.LastSeen) <= s.idle {
		return false
	}
	sess.Clear()
	return true
}

// Touch records activity on the session.
func (s *Service) Touch(sess *Session) {
	sess.LastSeen = s.now()
	sess.dirty = true
}

// SetLastSeen backdates or forwards the activity timestamp.
func (s *Service) SetLastSeen(sess *Session, at time.Time) {
	sess.LastSeen = at
	sess.dirty = true
}

// Login marks the session authenticated with role. The session is moved to
// a fresh ID; the bound CSRF token is kept.
func (s *Service) Login(sess *Session, role auth.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	now := s.now()
	if sess.persisted && sess.replaces == "" {
		sess.replaces = sess.ID
	}
	sess.ID = rand.Text()
	sess.persisted = false
	sess.Authenticated = true
	sess.Role = role
	sess.LoginAt = &now
	sess.LastSeen = now
	sess.dirty = true
	return nil
}

// Logout clears all session state.
func (s *Service) Logout(sess *Session) {
	sess.Clear()
}

// CSRFToken returns the token bound to the session, creating one on first use.
func (s *Service) CSRFToken(sess *Session) string {
	if sess.CSRFToken == "" {
		sess.CSRFToken = rand.Text()
		sess.dirty = true
	}
	return sess.CSRFToken
}

// ValidateCSRF compares presented with the session's token in constant time.
func (s *Service) ValidateCSRF(sess *Session, presented string) error {
	if presented == "" || sess.CSRFToken == "" {
		return ErrCSRFTokenMissing
	}
	if subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(presented)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

// Commit writes pending changes. Empty sessions are deleted rather than stored.
func (s *Service) Commit(ctx context.Context, sess *Session) (CommitResult, error) {
	if !sess.dirty {
		return CommitNone, nil
	}

	result := CommitNone
	if sess.replaces != "" {
		if err := s.delete(ctx, sess.replaces); err != nil {
			return CommitNone, err
		}
		sess.replaces = ""
		result = CommitDeleted
	}

	if sess.IsEmpty() {
		if sess.persisted {
			if err := s.delete(ctx, sess.ID); err != nil {
				return CommitNone, err
			}
			sess.persisted = false
			result = CommitDeleted
		}
		sess.dirty = false
		return result, nil
	}

	if sess.ID == "" {
		sess.ID = rand.Text()
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return CommitNone, fmt.Errorf("saving session: %w", err)
	}
	sess.persisted = true
	sess.dirty = false
	return CommitSaved, nil
}

// PurgeIdle removes stored sessions idle past the timeout.
func (s *Service) PurgeIdle(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteIdleBefore(ctx, s.now().Add(-s.idle))
	if err != nil {
		return 0, fmt.Errorf("purging idle sessions: %w", err)
	}
	if n > 0 {
		s.logger.Debug("purged idle sessions", "count", n)
	}
	return n, nil
}

func (s *Service) delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
