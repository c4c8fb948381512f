package entity

// Kind is the storage and validation type of a field.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	// KindDate holds a calendar date formatted as YYYY-MM-DD.
	KindDate
	// KindDateTime holds an RFC 3339 timestamp normalised to UTC.
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindText:
		return "text"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Field describes one user-editable attribute of an entity type.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
}

// Descriptor declares an entity type: its fields, where it is stored, the
// route segment it is served under and its lookup vocabularies.
type Descriptor struct {
	// Name is the singular identifier, e.g. "deliverable".
	Name string
	// Label is used in client-facing messages, e.g. "Deliverable not found".
	Label string
	// Plural is the route segment and export key, e.g. "deliverables".
	Plural string
	Table  string
	Fields []Field
	// StatusField and GroupField drive the analytics breakdowns.
	StatusField string
	GroupField  string
	// Lookups are static vocabularies served under /api/<plural>/<name>.
	Lookups map[string]any
}

// Field returns the named field.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns a fresh field map holding every field's default value.
func (d *Descriptor) Defaults() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		out[f.Name] = f.Default
	}
	return out
}
