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
		{name: "unknown kind", err: fmt.Errorf("%w: invoices", ErrUnknownKind), wantCode: "IMP001"},
		{name: "limiter busy", err: ErrTooManyImports, wantCode: "IMP002"},
		{name: "conflicting bank fields", err: fmt.Errorf("line 4: %w", ErrConflictingBankFields), wantCode: "IMP003"},
		{name: "missing location", err: ErrMissingLocation, wantCode: "IMP004"},
		{name: "batch not found", err: ErrBatchNotFound, wantCode: "IMP005"},
		{name: "missing credential", err: fmt.Errorf("build cache: %w", ErrMissingCredential), wantCode: "CFG001"},
		{name: "fiscal classification", err: fmt.Errorf("%w: TVA 20%%", ErrFiscalClassification), wantCode: "CFG002"},
		{name: "spreadsheet", err: fmt.Errorf("%w: zip: not a valid zip file", ErrInvalidSheet), wantCode: "FILE002"},
		{name: "duplicate key", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connection refused"), wantCode: "DB003"},
		{name: "deadline before timeout", err: errors.New("context deadline exceeded (Client.Timeout)"), wantCode: "REQ002"},
		{name: "malformed body", err: errors.New("invalid request body: unexpected EOF"), wantCode: "REQ003"},
		{name: "case insensitive matching", err: errors.New("DUPLICATE KEY value"), wantCode: "DB001"},
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

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyImports)

	expected := "System is busy processing other imports (Code: IMP002). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: ErrEmptyFile, want: true},
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
		techErr := fmt.Errorf("load reference: %w", ErrMissingCredential)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The country resolver is not configured" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrMissingCredential) {
			t.Error("Unwrap() should expose the sentinel")
		}
	})
}
