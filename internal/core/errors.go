// Package core provides the business logic for ERP bulk imports.
//
// # Error Codes Reference
//
// Batch-level failures are mapped to user-facing messages with a code that
// users can quote to support staff. Row and field problems never reach this
// mapping: they are recorded as log entries and shown in the import report.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unknown import kind
//	         Action: Use one of the kinds listed by GET /api/kinds
//	         Patterns: "unknown import kind"
//
//	IMP002 - System busy: too many imports in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent imports"
//
//	IMP003 - Conflicting bank fields: a row has both an IBAN and bank accounts
//	         Action: Keep only the iban/bic columns in the file
//	         Patterns: "both an iban and bank accounts"
//
//	IMP004 - Missing stock location
//	         Action: Pass a location or configure a default warehouse
//	         Patterns: "no stock location"
//
//	IMP005 - Batch not found
//	         Action: The batch may have expired. Run the import again
//	         Patterns: "batch not found"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Missing resolver credential
//	         Action: Set OPENAI_API_KEY in the environment
//	         Patterns: "missing country resolver credential"
//
//	CFG002 - Inconsistent fiscal classification
//	         Action: Align purchase and sale taxes of the classification
//	         Patterns: "fiscal classification"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unreadable spreadsheet ("invalid spreadsheet")
//	FILE003 - No file provided ("no file provided")
//	FILE004 - Empty file ("empty file")
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key ("duplicate key", "violates unique")
//	DB002 - Foreign key ("violates foreign key")
//	DB003 - Connection refused ("connection refused")
//	DB004 - Timeout ("timeout")
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled ("context canceled")
//	REQ002 - Request timed out ("context deadline exceeded")
//	REQ003 - Malformed request body ("invalid request body")
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error when users report ERR000.
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for batch-level failures. Callers check them with errors.Is.
var (
	// ErrMissingCredential aborts a batch before any row when the country
	// resolver has no access credential.
	ErrMissingCredential = errors.New("missing country resolver credential")

	// ErrConflictingBankFields is a caller contract violation: a row carries
	// both a raw iban and already built bank accounts.
	ErrConflictingBankFields = errors.New("row has both an iban and bank accounts")

	// ErrFiscalClassification reports a classification whose purchase and
	// sale rates differ.
	ErrFiscalClassification = errors.New("inconsistent fiscal classification")

	// ErrMissingLocation is returned when a stock operation needs a location
	// and neither the options nor the reference data provide one.
	ErrMissingLocation = errors.New("no stock location given and no default warehouse")

	// ErrDeliverabilityUnknown is wrapped by email validators when the
	// domain lookup failed without a definitive answer. The address is kept.
	ErrDeliverabilityUnknown = errors.New("email deliverability could not be checked")

	ErrUnknownKind    = errors.New("unknown import kind")
	ErrTooManyImports = errors.New("too many concurrent imports, please try again later")
	ErrBatchNotFound  = errors.New("batch not found")
	ErrNoFile         = errors.New("no file provided")
	ErrEmptyFile      = errors.New("empty file")
	ErrInvalidSheet   = errors.New("invalid spreadsheet")
	ErrFileTooLarge   = errors.New("file too large")
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

var errorPatterns = []errorPattern{
	// Import errors
	{"unknown import kind", UserMessage{"Unknown import kind", "Use one of the kinds listed by GET /api/kinds", "IMP001"}},
	{"too many concurrent imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP002"}},
	{"both an iban and bank accounts", UserMessage{"A row has both an IBAN and bank accounts", "Keep only the iban/bic columns in the file", "IMP003"}},
	{"no stock location", UserMessage{"No stock location available", "Pass a location or configure a default warehouse", "IMP004"}},
	{"batch not found", UserMessage{"Import batch not found", "The batch may have expired. Run the import again", "IMP005"}},

	// Configuration errors
	{"missing country resolver credential", UserMessage{"The country resolver is not configured", "Set OPENAI_API_KEY in the environment", "CFG001"}},
	{"fiscal classification", UserMessage{"A fiscal classification has different purchase and sale rates", "Align purchase and sale taxes of the classification", "CFG002"}},

	// File errors
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"invalid spreadsheet", UserMessage{"File is not a readable CSV or XLSX spreadsheet", "Save the file as UTF-8 CSV or XLSX", "FILE002"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a file to import", "FILE003"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Please upload a file with data rows", "FILE004"}},

	// Database errors
	{"duplicate key", UserMessage{"A record with this key already exists", "Check the file for records that were already imported", "DB001"}},
	{"violates unique", UserMessage{"A record with this key already exists", "Check the file for records that were already imported", "DB001"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Import the referenced records first", "DB002"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB003"}},

	// Request errors, before the generic timeout
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "REQ001"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller file or try again later", "REQ002"}},
	{"invalid request body", UserMessage{"The request body could not be read", "Send a JSON object with a rows array", "REQ003"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB004"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
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

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
