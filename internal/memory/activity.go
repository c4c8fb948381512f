package memory

import (
	"context"
	"sync"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
)

// ActivityRepository keeps activity entries in memory.
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []activity.ActivityEntry
	nextID  int64
}

// NewActivityRepository creates an empty activity repository.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) Log(_ context.Context, entry *activity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, *entry)
	return nil
}

// List returns matching entries newest first.
func (r *ActivityRepository) List(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []activity.ActivityEntry
	skipped := 0
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if opts.EntityType != "" && e.EntityType != opts.EntityType {
			continue
		}
		if opts.RecordID != nil && (e.RecordID == nil || *e.RecordID != *opts.RecordID) {
			continue
		}
		if opts.ActivityType != nil && e.ActivityType != *opts.ActivityType {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}
