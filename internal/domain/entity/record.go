package entity

import (
	"encoding/json"
	"maps"
	"time"
)

// Record is one stored instance of an entity type. Fields holds string,
// int64, float64, bool or nil values keyed by field name.
type Record struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := *r
	out.Fields = maps.Clone(r.Fields)
	return &out
}

// MarshalJSON renders the record as a flat object with id and timestamps
// alongside its fields.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	maps.Copy(out, r.Fields)
	out["id"] = r.ID
	out["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	out["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}
