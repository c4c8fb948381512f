package session

import (
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/auth"
)

// Session is the server-side state bound to one browser cookie.
// Authenticated implies Role is admin or viewer.
type Session struct {
	ID            string     `json:"id"`
	Authenticated bool       `json:"authenticated"`
	Role          auth.Role  `json:"role"`
	CSRFToken     string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	LoginAt       *time.Time `json:"login_at,omitempty"`
	LastSeen      time.Time  `json:"last_seen"`

	persisted bool
	dirty     bool
	replaces  string
}

// State returns the fields the auth guards decide on.
func (s *Session) State() auth.State {
	return auth.State{Authenticated: s.Authenticated, Role: s.Role}
}

// IsEmpty reports whether the session carries nothing worth storing.
func (s *Session) IsEmpty() bool {
	return !s.Authenticated && s.CSRFToken == ""
}

// Persisted reports whether the session was loaded from or saved to the store.
func (s *Session) Persisted() bool {
	return s.persisted
}

// Clear drops authentication and the bound CSRF token.
func (s *Session) Clear() {
	s.Authenticated = false
	s.Role = auth.RoleNone
	s.LoginAt = nil
	s.CSRFToken = ""
	s.dirty = true
}

// CommitResult tells the transport what happened to the stored session.
type CommitResult int

const (
	// CommitNone means nothing changed in the store.
	CommitNone CommitResult = iota
	// CommitSaved means the session was written under its current ID.
	CommitSaved
	// CommitDeleted means the stored session was removed.
	CommitDeleted
)
