// Package core provides the business logic for schedule import operations.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
// Errors related to reading and decoding the imported file:
//
//	FILE001 - File too large: File exceeds the maximum import size
//	          Action: Split the schedule into smaller files
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure the file is comma-separated with a header row
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save the file as UTF-8
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a schedule file to import
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The imported file is empty
//	          Action: Please import a file with a header and data rows
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported format: File type is not csv, xlsx or json
//	          Action: Export the schedule as .csv or .xlsx
//	          Patterns: "unsupported file format"
//
//	FILE007 - Invalid workbook: The xlsx file could not be opened
//	          Action: Re-save the workbook in Excel format or export as CSV
//	          Patterns: "invalid xlsx"
//
//	FILE008 - Invalid constraints: The JSON file is not a constraints document
//	          Action: Use a list of groups, e.g. [["MATH-171","CS-108"]]
//	          Patterns: "invalid constraints json"
//
// # Import Errors (IMP001-IMP099)
//
// Errors related to the import process itself:
//
//	IMP001 - Import in progress: Another import is still running
//	         Action: Wait for the current import to finish
//	         Patterns: "import already in progress"
//
//	IMP002 - Import cancelled: Parsing stopped before the end of the file
//	         Action: Start a new import when ready
//	         Patterns: "parse cancelled"
//
//	IMP003 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	IMP004 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Lookup Errors (LKP001-LKP099)
//
//	LKP001 - Section not found: No section matches the given name and term
//	         Action: Use the PREFIX-NUMBER-LETTER form, e.g. MATH-171-A
//	         Patterns: "section not found"
//
//	LKP002 - Invalid term: The term is not one of FA, IN, SP or SU
//	         Action: Use a term code such as FA or SP
//	         Patterns: "invalid term"
//
// # Authentication Errors (AUTH001-AUTH099)
//
// Errors from the import key check on schedule-changing requests:
//
//	AUTH001 - Missing key: The request carries no X-API-Key header
//	          Action: Send your import key in the X-API-Key header
//	          Patterns: "missing api key"
//
//	AUTH002 - Invalid key: The X-API-Key matches no configured importer
//	          Action: Check the key with the schedule administrator
//	          Patterns: "invalid api key"
//
// # Database Errors (DB001-DB099)
//
// Errors from the optional snapshot store:
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - Timeout: Operation timed out
//	        Action: Please try again later
//	        Patterns: "timeout"
//
//	DB004 - Snapshot failed: The schedule was imported but not saved
//	        Action: The schedule is usable; re-import later to persist it
//	        Patterns: "save snapshot"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are listed
// before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE008)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum import size",
			Action:  "Split the schedule into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a schedule file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The imported file is empty",
			Action:  "Please import a file with a header and data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Export the schedule as .csv or .xlsx",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "The workbook could not be opened",
			Action:  "Re-save the workbook in Excel format or export as CSV",
			Code:    "FILE007",
		},
	},
	{
		pattern: "invalid constraints json",
		msg: UserMessage{
			Message: "The JSON file is not a constraints document",
			Action:  `Use a list of groups, e.g. [["MATH-171","CS-108"]]`,
			Code:    "FILE008",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP004)
	// =========================================================================
	{
		pattern: "import already in progress",
		msg: UserMessage{
			Message: "Another import is still running",
			Action:  "Wait for the current import to finish",
			Code:    "IMP001",
		},
	},
	{
		pattern: "parse cancelled",
		msg: UserMessage{
			Message: "Import was cancelled",
			Action:  "Start a new import when ready",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP004",
		},
	},

	// =========================================================================
	// Lookup Errors (LKP001-LKP002)
	// =========================================================================
	{
		pattern: "section not found",
		msg: UserMessage{
			Message: "No section matches that name and term",
			Action:  "Use the PREFIX-NUMBER-LETTER form, e.g. MATH-171-A",
			Code:    "LKP001",
		},
	},
	{
		pattern: "invalid term",
		msg: UserMessage{
			Message: "Unknown term",
			Action:  "Use a term code such as FA or SP",
			Code:    "LKP002",
		},
	},

	// =========================================================================
	// Authentication Errors (AUTH001-AUTH002)
	// =========================================================================
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "An import key is required to change the schedule",
			Action:  "Send your import key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "The import key was not recognized",
			Action:  "Check the key with the schedule administrator",
			Code:    "AUTH002",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB004)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "save snapshot",
		msg: UserMessage{
			Message: "The schedule was imported but not saved",
			Action:  "The schedule is usable; re-import later to persist it",
			Code:    "DB004",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback message with code ERR000 is
// returned.
//
// Example:
//
//	err := fmt.Errorf("%w: %q", ErrUnsupportedFormat, "pdf")
//	msg := MapError(err)
//	// msg.Code == "FILE006"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message. Error
// returns the friendly text; Unwrap exposes the original for errors.Is.
type UserError struct {
	UserMessage
	Err error
}

// NewUserError wraps err, or returns nil when err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{UserMessage: MapError(err), Err: err}
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }
