package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultListLimit caps listings that don't specify a limit.
const DefaultListLimit = 100

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry, filling in the timestamp and the
// actor from ctx when missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = ActorFromContext(ctx)
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Record logs an entry and only reports failures to the service log. Use it
// where the audit trail must not fail the surrounding operation.
func (s *Service) Record(ctx context.Context, entry *ActivityEntry) {
	if err := s.LogActivity(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("failed to record activity", "type", entry.ActivityType, "error", err)
	}
}

// GetRecentActivity lists activity entries newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
