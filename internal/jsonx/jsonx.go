// Package jsonx wraps decoded JSON values with typed field accessors that
// distinguish an absent key from a mistyped one. Decoders built on top of it
// can report exactly which key failed instead of coercing to zero values.
package jsonx

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Value is a single decoded JSON value of any kind.
type Value struct {
	data any
}

// Object is a decoded JSON object.
type Object map[string]any

// FieldError reports a field access that could not be satisfied.
type FieldError struct {
	Key     string
	Want    string
	Got     string
	Missing bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("field %q is absent", e.Key)
	}
	return fmt.Sprintf("field %q is not a %s (got %s)", e.Key, e.Want, e.Got)
}

// TypeError reports a whole-value conversion that could not be satisfied.
type TypeError struct {
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("value is not a %s (got %s)", e.Want, e.Got)
}

// Parse decodes raw JSON into a Value.
func Parse(data []byte) (Value, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, errors.WithMessage(err, "parse json")
	}
	return Value{data: v}, nil
}

// Of wraps an already-decoded value.
func Of(v any) Value {
	return Value{data: v}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func (v Value) Object() (Object, error) {
	m, ok := v.data.(map[string]any)
	if !ok {
		return nil, &TypeError{Want: "object", Got: typeName(v.data)}
	}
	return Object(m), nil
}

func (v Value) Array() ([]Value, error) {
	raw, ok := v.data.([]any)
	if !ok {
		return nil, &TypeError{Want: "array", Got: typeName(v.data)}
	}
	out := make([]Value, 0, len(raw))
	for _, item := range raw {
		out = append(out, Value{data: item})
	}
	return out, nil
}

func (v Value) Bool() (bool, error) {
	b, ok := v.data.(bool)
	if !ok {
		return false, &TypeError{Want: "bool", Got: typeName(v.data)}
	}
	return b, nil
}

func (v Value) Int64() (int64, error) {
	f, ok := v.data.(float64)
	if !ok {
		return 0, &TypeError{Want: "number", Got: typeName(v.data)}
	}
	return int64(f), nil
}

func (v Value) Float64() (float64, error) {
	f, ok := v.data.(float64)
	if !ok {
		return 0, &TypeError{Want: "number", Got: typeName(v.data)}
	}
	return f, nil
}

func (v Value) String() (string, error) {
	s, ok := v.data.(string)
	if !ok {
		return "", &TypeError{Want: "string", Got: typeName(v.data)}
	}
	return s, nil
}

// Contains reports whether the key is present, regardless of its type.
func (o Object) Contains(key string) bool {
	_, ok := o[key]
	return ok
}

// Missing returns the subset of keys that are absent, in argument order.
func (o Object) Missing(keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if !o.Contains(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// Present returns the subset of keys that exist, in argument order.
func (o Object) Present(keys ...string) []string {
	var present []string
	for _, key := range keys {
		if o.Contains(key) {
			present = append(present, key)
		}
	}
	return present
}

// Value returns the raw value under key.
func (o Object) Value(key string) (Value, error) {
	raw, ok := o[key]
	if !ok {
		return Value{}, &FieldError{Key: key, Missing: true}
	}
	return Value{data: raw}, nil
}

func (o Object) String(key string) (string, error) {
	raw, ok := o[key]
	if !ok {
		return "", &FieldError{Key: key, Missing: true}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{Key: key, Want: "string", Got: typeName(raw)}
	}
	return s, nil
}

func (o Object) Int64(key string) (int64, error) {
	raw, ok := o[key]
	if !ok {
		return 0, &FieldError{Key: key, Missing: true}
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, &FieldError{Key: key, Want: "number", Got: typeName(raw)}
	}
	return int64(f), nil
}

func (o Object) Int(key string) (int, error) {
	n, err := o.Int64(key)
	return int(n), err
}

func (o Object) Float64(key string) (float64, error) {
	raw, ok := o[key]
	if !ok {
		return 0, &FieldError{Key: key, Missing: true}
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, &FieldError{Key: key, Want: "number", Got: typeName(raw)}
	}
	return f, nil
}

func (o Object) Bool(key string) (bool, error) {
	raw, ok := o[key]
	if !ok {
		return false, &FieldError{Key: key, Missing: true}
	}
	b, ok := raw.(bool)
	if !ok {
		return false, &FieldError{Key: key, Want: "bool", Got: typeName(raw)}
	}
	return b, nil
}

func (o Object) Object(key string) (Object, error) {
	raw, ok := o[key]
	if !ok {
		return nil, &FieldError{Key: key, Missing: true}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &FieldError{Key: key, Want: "object", Got: typeName(raw)}
	}
	return Object(m), nil
}

func (o Object) Array(key string) ([]Value, error) {
	raw, ok := o[key]
	if !ok {
		return nil, &FieldError{Key: key, Missing: true}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &FieldError{Key: key, Want: "array", Got: typeName(raw)}
	}
	out := make([]Value, 0, len(items))
	for _, item := range items {
		out = append(out, Value{data: item})
	}
	return out, nil
}
