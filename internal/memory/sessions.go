package memory

import (
	"context"
	"sync"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/session"
	"github.com/capstonehub/capstone-hub/internal/repository"
)

// SessionRepository stores sessions in memory.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

// NewSessionRepository creates an empty session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: map[string]session.Session{}}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session.Session{
		ID:            stored.ID,
		Authenticated: stored.Authenticated,
		Role:          stored.Role,
		CSRFToken:     stored.CSRFToken,
		CreatedAt:     stored.CreatedAt,
		LoginAt:       stored.LoginAt,
		LastSeen:      stored.LastSeen,
	}, nil
}

func (r *SessionRepository) Save(_ context.Context, sess *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sess.ID] = session.Session{
		ID:            sess.ID,
		Authenticated: sess.Authenticated,
		Role:          sess.Role,
		CSRFToken:     sess.CSRFToken,
		CreatedAt:     sess.CreatedAt,
		LoginAt:       sess.LoginAt,
		LastSeen:      sess.LastSeen,
	}
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteIdleBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
