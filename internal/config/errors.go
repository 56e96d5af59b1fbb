package config

import (
	"fmt"
	"strings"
)

// IOError reports a document path that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a document that is not well-formed YAML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a field the active configuration shape lacks.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %s", e.Field)
}

// ConflictingFieldsError reports mutually exclusive fields that are both set.
type ConflictingFieldsError struct {
	Fields []string
}

func (e *ConflictingFieldsError) Error() string {
	return fmt.Sprintf("fields %s are mutually exclusive", strings.Join(e.Fields, " and "))
}
