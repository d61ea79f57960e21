package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// # Error Codes Reference
//
// Import errors (IMP001-IMP099):
//
//	IMP001 - Unsupported kind: the requested import/export kind does not exist
//	IMP002 - Import has errors: some rows were skipped, proceed is blocked
//	IMP003 - No conflict selected: conflicts exist and none was accepted
//	IMP004 - Unknown conflict: the conflict id is not part of this import
//	IMP005 - System busy: every import slot is taken
//
// File errors (FILE001-FILE099):
//
//	FILE001 - File too large
//	FILE002 - Empty file
//	FILE003 - No file: the multipart form has no "file" field
//
// Session errors (SES001-SES099):
//
//	SES001 - Import not found: the session expired or never existed
//	SES002 - Request cancelled
//	SES003 - Request timed out
//
// Catalog errors (CAT001-CAT099):
//
//	CAT001 - Not found
//	CAT002 - Already exists
//	CAT003 - Invalid input
//
// Database errors (DB001-DB099) are matched on driver message text:
//
//	DB001 - Duplicate key
//	DB002 - Foreign key
//	DB003 - Connection refused
//
// RATE001 is returned for rate-limited requests and ERR000 when nothing matches.
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, in table order. Only
// then are the message patterns tried, case-insensitively, with
// strings.Contains. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/catalog/internal/catalog"
)

var (
	// ErrNoFile is returned when an import request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrRateLimited is returned by the web layer for throttled requests.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorTarget maps a sentinel error to a user message.
type errorTarget struct {
	target error
	msg    UserMessage
}

// errorPattern maps a message substring to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorTargets = []errorTarget{
	// Import
	{ErrUnsupportedKind, UserMessage{
		Message: "This import type is not supported",
		Action:  "Choose products, variants or inventory",
		Code:    "IMP001",
	}},
	{ErrImportHasErrors, UserMessage{
		Message: "Some rows could not be imported",
		Action:  "Fix the rows listed under errors and upload the file again",
		Code:    "IMP002",
	}},
	{ErrNoConflictSelected, UserMessage{
		Message: "No conflict has been accepted",
		Action:  "Select at least one conflict to resolve before proceeding",
		Code:    "IMP003",
	}},
	{ErrUnknownConflict, UserMessage{
		Message: "This conflict is not part of the import",
		Action:  "Reload the import summary and try again",
		Code:    "IMP004",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP005",
	}},

	// File
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header and data rows",
		Code:    "FILE002",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE003",
	}},

	// Session
	{ErrSessionNotFound, UserMessage{
		Message: "Import not found",
		Action:  "The import may have expired. Please upload the file again",
		Code:    "SES001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "SES002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "SES003",
	}},

	// Catalog
	{catalog.ErrNotFound, UserMessage{
		Message: "The requested record does not exist",
		Action:  "Refresh the page; it may have been deleted",
		Code:    "CAT001",
	}},
	{catalog.ErrAlreadyExists, UserMessage{
		Message: "A record with this identifier already exists",
		Action:  "Use a different SKU or code",
		Code:    "CAT002",
	}},
	{catalog.ErrInvalid, UserMessage{
		Message: "Some fields are missing or invalid",
		Action:  "Check the highlighted fields and try again",
		Code:    "CAT003",
	}},

	{ErrRateLimited, UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{
		Message: "A record with this identifier already exists",
		Action:  "Use a different SKU or code",
		Code:    "DB001",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Create the product or facility first",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check application logs for the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load session: %w", ErrSessionNotFound))
//	// msg.Code == "SES001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, et := range errorTargets {
		if errors.Is(err, et.target) {
			return et.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
