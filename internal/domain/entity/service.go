package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/repository"
	"github.com/google/uuid"
)

// Service implements CRUD for every entity type in the catalog.
type Service struct {
	repo     Repository
	activity ActivityLogger
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a new entity service. activity may be nil.
func NewService(repo Repository, activity ActivityLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, activity: activity, now: time.Now, logger: logger}
}

// WithClock replaces the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns every record of type d.
func (s *Service) List(ctx context.Context, d *Descriptor) ([]Record, error) {
	records, err := s.repo.List(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.Plural, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, d *Descriptor, id string) (*Record, error) {
	rec, err := s.repo.Get(ctx, d, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading %s: %w", d.Name, err)
	}
	return rec, nil
}

// Create validates payload, applies field defaults and stores a new record
// with both timestamps set to now.
func (s *Service) Create(ctx context.Context, d *Descriptor, payload map[string]any) (*Record, error) {
	fields, err := d.Normalize(payload, false)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		Fields:    d.Defaults(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	maps.Copy(rec.Fields, fields)

	if err := s.repo.Create(ctx, d, rec); err != nil {
		return nil, fmt.Errorf("creating %s: %w", d.Name, err)
	}

	s.logActivity(ctx, d, activity.TypeRecordCreated, rec.ID, "created")
	return rec, nil
}

// Update assigns the fields present in payload to an existing record and
// refreshes updated_at. created_at is never changed.
func (s *Service) Update(ctx context.Context, d *Descriptor, id string, payload map[string]any) (*Record, error) {
	fields, err := d.Normalize(payload, true)
	if err != nil {
		return nil, err
	}

	rec, err := s.Get(ctx, d, id)
	if err != nil {
		return nil, err
	}

	maps.Copy(rec.Fields, fields)
	rec.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, d, rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating %s: %w", d.Name, err)
	}

	s.logActivity(ctx, d, activity.TypeRecordUpdated, rec.ID, "updated")
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, d *Descriptor, id string) error {
	if err := s.repo.Delete(ctx, d, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting %s: %w", d.Name, err)
	}

	s.logActivity(ctx, d, activity.TypeRecordDeleted, id, "deleted")
	return nil
}

func (s *Service) logActivity(ctx context.Context, d *Descriptor, typ activity.ActivityType, id, verb string) {
	if s.activity == nil {
		return
	}
	recordID := id
	entry := &activity.ActivityEntry{
		ActivityType: typ,
		EntityType:   d.Name,
		RecordID:     &recordID,
		Summary:      fmt.Sprintf("%s %s", d.Label, verb),
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", typ, "entity", d.Name, "error", err)
	}
}
