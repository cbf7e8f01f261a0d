// Package schema declares a passive validation contract for dynamic values.
//
// A Schema names the fields a stored object must carry, the primitive type
// of each, and an optional per-field Rule. Validation is all-or-nothing:
// the first violation aborts, and fields the schema does not name are never
// inspected.
package schema

import (
	"errors"
	"fmt"
)

// Type is the declared primitive type of a schema field, mirroring the
// structural forms a decoded dynamic value can take.
type Type string

const (
	String  Type = "string"
	Number  Type = "number"
	Boolean Type = "boolean"
	Object  Type = "object"
	Array   Type = "array"
)

// Rule is an arbitrary per-field predicate. It must return true for the
// field's value or validation fails.
type Rule func(v any) bool

// Field declares the expectations for a single named field.
type Field struct {
	Type     Type
	Required bool
	Validate Rule
}

// Schema maps field names to their declarations.
type Schema map[string]Field

// ErrNotObject is returned when a schema is applied to a value that is not
// a field-addressable object.
var ErrNotObject = errors.New("schema: value is not an object")

// FieldError is the first violation found while validating a value.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("schema: %s on %q", e.Reason, e.Field)
}

// Validate checks value against the schema. The value must be an object
// (map with string keys). The first failing field aborts the whole check.
func (s Schema) Validate(value any) error {
	if len(s) == 0 {
		return nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return ErrNotObject
	}
	for name, f := range s {
		fv, present := obj[name]
		if !present {
			if f.Required {
				return &FieldError{Field: name, Reason: "missing required field"}
			}
			continue
		}
		if f.Type != "" && !matches(f.Type, fv) {
			return &FieldError{Field: name, Reason: fmt.Sprintf("type mismatch (want %s)", f.Type)}
		}
		if f.Validate != nil && !f.Validate(fv) {
			return &FieldError{Field: name, Reason: "validation failed"}
		}
	}
	return nil
}

func matches(t Type, v any) bool {
	switch t {
	case String:
		_, ok := v.(string)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Number:
		return isNumber(v)
	case Object:
		_, ok := v.(map[string]any)
		return ok
	case Array:
		_, ok := v.([]any)
		return ok
	default:
		return false
	}
}

// isNumber accepts every numeric form the serializers can hand back:
// JSON yields float64, msgpack preserves sized ints and uints.
func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
