package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSealErrorFormat(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
		cause   error
		want    string
	}{
		{
			name:    "without cause",
			code:    SnapshotMissing,
			message: "snapshot not found",
			cause:   nil,
			want:    "[SNAPSHOT_MISSING] snapshot not found",
		},
		{
			name:    "with cause",
			code:    SnapshotInvalid,
			message: "cannot decode snapshot",
			cause:   fmt.Errorf("unexpected end of JSON input"),
			want:    "[SNAPSHOT_INVALID] cannot decode snapshot: unexpected end of JSON input",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := New(tc.code, tc.message, tc.cause)
			if got := err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSealErrorUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := New(StorageError, "journal write failed", cause)

	if !Is(err, cause) {
		t.Error("Is() did not match the wrapped cause")
	}

	var se *SealError
	if !As(err, &se) {
		t.Fatal("As() did not recover *SealError")
	}
	if se.Code != StorageError {
		t.Errorf("Code = %s, want %s", se.Code, StorageError)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"seal error", New(RewriteConflict, "overlap", nil), RewriteConflict},
		{"wrapped seal error", fmt.Errorf("outer: %w", New(Timeout, "slow", nil)), Timeout},
		{"plain error", stderrors.New("plain"), InternalError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Errorf("CodeOf() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSuggestedFixesAttached(t *testing.T) {
	err := New(SnapshotMissing, "no snapshot", nil)
	if len(err.SuggestedFixes) == 0 {
		t.Fatal("expected suggested fixes for SNAPSHOT_MISSING")
	}
	if !strings.HasPrefix(err.SuggestedFixes[0].Command, "seal ") {
		t.Errorf("fix command = %q, want a seal subcommand", err.SuggestedFixes[0].Command)
	}

	if fixes := GetSuggestedFixes(UnsupportedLanguage); fixes != nil {
		t.Errorf("GetSuggestedFixes(UnsupportedLanguage) = %v, want nil", fixes)
	}
}
