package session

import (
	"context"
	"time"
)

// Repository provides persistence for sessions.
type Repository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
