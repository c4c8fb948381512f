// Package memory provides mutex-guarded in-process repositories.
package memory

import (
	"context"
	"sync"

	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/repository"
)

type table struct {
	order []string
	rows  map[string]*entity.Record
}

// RecordRepository stores records per entity type in memory.
type RecordRepository struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewRecordRepository creates an empty record repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{tables: map[string]*table{}}
}

func (r *RecordRepository) table(d *entity.Descriptor) *table {
	t, ok := r.tables[d.Table]
	if !ok {
		t = &table{rows: map[string]*entity.Record{}}
		r.tables[d.Table] = t
	}
	return t
}

func (r *RecordRepository) List(_ context.Context, d *entity.Descriptor) ([]entity.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[d.Table]
	if !ok {
		return []entity.Record{}, nil
	}
	out := make([]entity.Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.rows[id].Clone())
	}
	return out, nil
}

func (r *RecordRepository) Get(_ context.Context, d *entity.Descriptor, id string) (*entity.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[d.Table]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *RecordRepository) Create(_ context.Context, d *entity.Descriptor, rec *entity.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(d)
	if _, exists := t.rows[rec.ID]; exists {
		return repository.ErrConflict
	}
	t.rows[rec.ID] = rec.Clone()
	t.order = append(t.order, rec.ID)
	return nil
}

func (r *RecordRepository) Update(_ context.Context, d *entity.Descriptor, rec *entity.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(d)
	if _, exists := t.rows[rec.ID]; !exists {
		return repository.ErrNotFound
	}
	t.rows[rec.ID] = rec.Clone()
	return nil
}

func (r *RecordRepository) Delete(_ context.Context, d *entity.Descriptor, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(d)
	if _, exists := t.rows[id]; !exists {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}
