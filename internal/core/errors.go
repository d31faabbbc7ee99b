package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels reported by Store implementations and the import limiter.
var (
	ErrRelationNotFound = errors.New("relation not found")
	ErrDuplicateID      = errors.New("duplicate invoice id")
	ErrNotFound         = errors.New("invoice not found")
	ErrTooManyImports   = errors.New("another import is in progress, please try again later")
)

// EmptyInputError is returned when an import has no rows at all.
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("empty input: %s has no header row", e.Source)
	}
	return "empty input: no header row"
}

// SchemaError is returned when a required role cannot be resolved from the
// header row.
type SchemaError struct {
	Missing []Role
	Header  []string
}

func (e *SchemaError) Error() string {
	roles := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		roles[i] = string(r)
	}
	return fmt.Sprintf("missing required column for %s (header: %s)",
		strings.Join(roles, ", "), strings.Join(e.Header, ","))
}

// DuplicateIdentifierError is returned when an id already exists in the
// ledger, or appears twice in one import. Row is the 1-based data row for
// imports and 0 otherwise.
type DuplicateIdentifierError struct {
	ID  string
	Row int
}

func (e *DuplicateIdentifierError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("duplicate invoice id %q at row %d", e.ID, e.Row)
	}
	return fmt.Sprintf("duplicate invoice id %q", e.ID)
}

func (e *DuplicateIdentifierError) Unwrap() error { return ErrDuplicateID }

// ValidationError is returned for a record that cannot be stored.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("invalid %s at row %d: %s", e.Field, e.Row, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RelationNotFoundError reports that none of the tried table identities exist.
type RelationNotFoundError struct {
	Relations []string
}

func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("relation not found: tried %s", strings.Join(e.Relations, ", "))
}

func (e *RelationNotFoundError) Unwrap() error { return ErrRelationNotFound }

// IsRelationNotFound reports whether err means the table identity is unknown.
func IsRelationNotFound(err error) bool {
	return errors.Is(err, ErrRelationNotFound)
}
