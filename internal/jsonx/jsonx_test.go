package jsonx

import (
	"errors"
	"reflect"
	"testing"
)

func TestObjectAccessorsNameTheKey(t *testing.T) {
	t.Parallel()

	v, err := Parse([]byte(`{"id": 7, "name": "ann", "flag": true, "score": 1.5}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	o, err := v.Object()
	if err != nil {
		t.Fatalf("object: %v", err)
	}

	if id, err := o.Int64("id"); err != nil || id != 7 {
		t.Fatalf("id: %d %v", id, err)
	}
	if name, err := o.String("name"); err != nil || name != "ann" {
		t.Fatalf("name: %q %v", name, err)
	}

	_, err = o.String("id")
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fieldErr.Key != "id" || fieldErr.Missing {
		t.Fatalf("mistyped access must name the key: %+v", fieldErr)
	}

	_, err = o.Int64("absent")
	if !errors.As(err, &fieldErr) || !fieldErr.Missing {
		t.Fatalf("absent access must be flagged missing: %v", err)
	}
}

func TestMissingAndPresentPreserveOrder(t *testing.T) {
	t.Parallel()

	o := Object{"b": 1.0, "d": "x"}
	if got := o.Missing("a", "b", "c", "d"); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("missing: %v", got)
	}
	if got := o.Present("a", "b", "c", "d"); !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Fatalf("present: %v", got)
	}
}

func TestValueConversions(t *testing.T) {
	t.Parallel()

	v, err := Parse([]byte(`[1, "two", true]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	items, err := v.Array()
	if err != nil || len(items) != 3 {
		t.Fatalf("array: %v %v", items, err)
	}
	if n, err := items[0].Int64(); err != nil || n != 1 {
		t.Fatalf("int: %d %v", n, err)
	}
	if s, err := items[1].String(); err != nil || s != "two" {
		t.Fatalf("string: %q %v", s, err)
	}
	if b, err := items[2].Bool(); err != nil || b != true {
		t.Fatalf("bool: %v %v", b, err)
	}

	_, err = items[0].Object()
	var typeErr *TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError, got %v", err)
	}
}
