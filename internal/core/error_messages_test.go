package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "empty input", err: &EmptyInputError{Source: "ledger.csv"}, wantCode: "IMP001"},
		{name: "wrapped schema error", err: fmt.Errorf("import: %w", &SchemaError{Missing: []Role{RoleCustomer}}), wantCode: "IMP002"},
		{name: "validation error", err: &ValidationError{Row: 3, Field: "id", Reason: "must not be empty"}, wantCode: "IMP003"},
		{name: "duplicate identifier", err: &DuplicateIdentifierError{ID: "7"}, wantCode: "LED001"},
		{name: "store duplicate sentinel", err: fmt.Errorf("insert: %w", ErrDuplicateID), wantCode: "LED001"},
		{name: "not found", err: fmt.Errorf("get %q: %w", "9", ErrNotFound), wantCode: "LED002"},
		{name: "relation not found", err: &RelationNotFoundError{Relations: []string{"invoices", "timologia"}}, wantCode: "LED003"},
		{name: "import busy", err: ErrTooManyImports, wantCode: "RATE002"},
		{name: "driver duplicate key text", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "LED001"},
		{name: "sqlite unique text", err: errors.New("constraint failed: UNIQUE constraint failed: invoices.id"), wantCode: "LED001"},
		{name: "csv parse", err: errors.New("parse csv: record on line 2: wrong number of fields"), wantCode: "IMP004"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "deadline", err: wrappedDeadline(), wantCode: "DB006"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func wrappedDeadline() error {
	return fmt.Errorf("select all: %w", errors.New("context deadline exceeded"))
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&DuplicateIdentifierError{ID: "7"})

	expected := "An invoice with this ID already exists (Code: LED001). Use a different invoice ID or edit the existing invoice"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "typed error is user facing", err: &EmptyInputError{}, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("delete %q: %w", "3", ErrNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Invoice not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
