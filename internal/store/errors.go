package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a backing file does not exist.
	ErrNotFound = errors.New("store file not found")

	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyField    = errors.New("empty required field")
	ErrInvalidNumber = errors.New("invalid number")
)

// ParseError reports an irrecoverable malformation in a store file.
type ParseError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: column %q: %v", e.File, e.Column, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: %v", e.File, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
