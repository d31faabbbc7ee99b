package core

// error_messages.go maps errors to messages a shop employee can act on.
//
// Codes are quoted back when someone reports a problem:
//
//	IMP001  import file has no header row
//	IMP002  import header lacks an id or name column
//	IMP003  import row is invalid (e.g. empty id)
//	IMP004  import file could not be parsed
//	IMP005  import file too large
//	IMP006  unsupported import file type
//	LED001  invoice id already exists
//	LED002  invoice not found
//	LED003  ledger table missing
//	DB004   database unreachable
//	DB006   operation timed out
//	RATE001 too many requests
//	RATE002 another import is running
//	ERR000  anything else
//
// Typed errors are matched first with errors.As / errors.Is; driver errors
// that only surface as text fall back to case-insensitive substring patterns.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgEmptyInput = UserMessage{
		Message: "The file is empty",
		Action:  "Export the ledger again including the header row",
		Code:    "IMP001",
	}
	msgSchema = UserMessage{
		Message: "The file is missing the ID or Name column",
		Action:  "Add an ID (or Issue Number) column and a Name column to the header",
		Code:    "IMP002",
	}
	msgValidation = UserMessage{
		Message: "A row in the file is invalid",
		Action:  "Check that every row has an invoice ID",
		Code:    "IMP003",
	}
	msgDuplicate = UserMessage{
		Message: "An invoice with this ID already exists",
		Action:  "Use a different invoice ID or edit the existing invoice",
		Code:    "LED001",
	}
	msgNotFound = UserMessage{
		Message: "Invoice not found",
		Action:  "Check the invoice ID and try again",
		Code:    "LED002",
	}
	msgNoRelation = UserMessage{
		Message: "The invoice table does not exist yet",
		Action:  "Import a CSV file or run the migrate command to create it",
		Code:    "LED003",
	}
	msgImportBusy = UserMessage{
		Message: "Another import is in progress",
		Action:  "Wait for it to finish and try again",
		Code:    "RATE002",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is checked in order; the first substring match wins.
var errorPatterns = []errorPattern{
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "unique constraint", msg: msgDuplicate},
	{pattern: "parse csv", msg: UserMessage{
		Message: "The file could not be read as CSV",
		Action:  "Save the spreadsheet as comma-separated UTF-8 and try again",
		Code:    "IMP004",
	}},
	{pattern: "open workbook", msg: UserMessage{
		Message: "The file could not be read as an Excel workbook",
		Action:  "Save the spreadsheet as .xlsx and try again",
		Code:    "IMP004",
	}},
	{pattern: "too large", msg: UserMessage{
		Message: "The file exceeds the maximum upload size",
		Action:  "Split the export or raise IMPORT_MAX_FILE_SIZE",
		Code:    "IMP005",
	}},
	{pattern: "unsupported file type", msg: UserMessage{
		Message: "Only .csv and .xlsx files can be imported",
		Action:  "Save the spreadsheet as CSV or XLSX",
		Code:    "IMP006",
	}},
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{pattern: "deadline exceeded", msg: UserMessage{
		Message: "Operation timed out",
		Action:  "Try again later",
		Code:    "DB006",
	}},
	{pattern: "timeout", msg: UserMessage{
		Message: "Operation timed out",
		Action:  "Try again later",
		Code:    "DB006",
	}},
	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		emptyErr  *EmptyInputError
		schemaErr *SchemaError
		validErr  *ValidationError
	)
	switch {
	case errors.As(err, &emptyErr):
		return msgEmptyInput
	case errors.As(err, &schemaErr):
		return msgSchema
	case errors.As(err, &validErr):
		return msgValidation
	case errors.Is(err, ErrDuplicateID):
		return msgDuplicate
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrRelationNotFound):
		return msgNoRelation
	case errors.Is(err, ErrTooManyImports):
		return msgImportBusy
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; it returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
