package tg

import (
	"fmt"
	"strings"
)

// MissingFieldsError reports required keys absent from a payload.
type MissingFieldsError struct {
	Entity string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: missing required value: %s", e.Entity, strings.Join(e.Fields, ", "))
}

// ConflictingFieldsError reports mutually exclusive keys that appeared together.
type ConflictingFieldsError struct {
	Entity string
	Fields []string
}

func (e *ConflictingFieldsError) Error() string {
	return fmt.Sprintf("%s: too many values present: %s", e.Entity, strings.Join(e.Fields, ", "))
}
