package entity

import (
	"context"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
)

// Repository provides persistence for records of any entity type. List
// returns records in creation order.
type Repository interface {
	List(ctx context.Context, d *Descriptor) ([]Record, error)
	Get(ctx context.Context, d *Descriptor, id string) (*Record, error)
	Create(ctx context.Context, d *Descriptor, rec *Record) error
	Update(ctx context.Context, d *Descriptor, rec *Record) error
	Delete(ctx context.Context, d *Descriptor, id string) error
}

// ActivityLogger records audit entries for mutations.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
