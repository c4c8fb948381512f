package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// system keys are assigned by the service and ignored in payloads.
var systemKeys = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// Normalize converts a decoded JSON payload into field values for d.
// Unknown and system keys are ignored. With partial false every required
// field must be present and non-blank; with partial true only the keys
// present are checked.
func (d *Descriptor) Normalize(payload map[string]any, partial bool) (map[string]any, error) {
	out := make(map[string]any, len(payload))
	for key, raw := range payload {
		if systemKeys[key] {
			continue
		}
		field, ok := d.Field(key)
		if !ok {
			continue
		}
		value, err := coerce(field, raw)
		if err != nil {
			return nil, err
		}
		if field.Required && blank(value) {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, field.Name)
		}
		out[key] = value
	}

	if !partial {
		for _, field := range d.Fields {
			if !field.Required {
				continue
			}
			if _, ok := out[field.Name]; !ok {
				return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, field.Name)
			}
		}
	}
	return out, nil
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// wholeInt64 reports whether f is integral and converts to int64 exactly.
func wholeInt64(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

func coerce(field Field, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	invalid := func() error {
		return fmt.Errorf("%w: %s must be of type %s", ErrInvalidInput, field.Name, field.Kind)
	}

	switch field.Kind {
	case KindString, KindText:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid()
		}
		return s, nil

	case KindInt:
		switch v := raw.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
			f, err := v.Float64()
			if err != nil || !wholeInt64(f) {
				return nil, invalid()
			}
			return int64(f), nil
		case float64:
			if !wholeInt64(v) {
				return nil, invalid()
			}
			return int64(v), nil
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		}
		return nil, invalid()

	case KindFloat:
		switch v := raw.(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, invalid()
			}
			return f, nil
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, invalid()

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, invalid()
		}
		return b, nil

	case KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid()
		}
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, invalid()
		}
		return t.Format(dateLayout), nil

	case KindDateTime:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid()
		}
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, invalid()
		}
		return t.UTC().Format(time.RFC3339), nil
	}
	return nil, invalid()
}
