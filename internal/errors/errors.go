package errors

import (
	stderrors "errors"
	"fmt"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SnapshotMissing indicates the program snapshot file was not found
	SnapshotMissing ErrorCode = "SNAPSHOT_MISSING"
	// SnapshotInvalid indicates the snapshot could not be decoded or failed validation
	SnapshotInvalid ErrorCode = "SNAPSHOT_INVALID"
	// ManifestInvalid indicates program.toml is malformed or inconsistent
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// SourceMissing indicates a document's source file could not be read
	SourceMissing ErrorCode = "SOURCE_MISSING"
	// UnsupportedLanguage indicates no immutability qualifier is known for a language
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// RewriteConflict indicates overlapping text edits for one document
	RewriteConflict ErrorCode = "REWRITE_CONFLICT"
	// ValidationFailed indicates rewritten source no longer parses
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// AnalysisCancelled indicates the whole-program pass was cancelled mid-scan
	AnalysisCancelled ErrorCode = "ANALYSIS_CANCELLED"
	// StorageError indicates the run journal could not be read or written
	StorageError ErrorCode = "STORAGE_ERROR"
	// ConfigInvalid indicates .seal/config.json failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// Timeout indicates an operation exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// Drilldown represents a suggested follow-up query
type Drilldown struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// SealError represents a seal error with code, message, and suggestions
type SealError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	Drilldowns     []Drilldown `json:"drilldowns,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new SealError
func New(code ErrorCode, message string, cause error) *SealError {
	return &SealError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *SealError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SealError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SealError) WithDetails(details interface{}) *SealError {
	e.Details = details
	return e
}

// WithDrilldowns adds follow-up query suggestions to the error
func (e *SealError) WithDrilldowns(drilldowns ...Drilldown) *SealError {
	e.Drilldowns = append(e.Drilldowns, drilldowns...)
	return e
}

// CodeOf returns the ErrorCode carried by err, or InternalError when err
// is not a SealError.
func CodeOf(err error) ErrorCode {
	var se *SealError
	if As(err, &se) {
		return se.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	SnapshotMissing: {
		{
			Type:        RunCommand,
			Command:     "seal init",
			Safe:        true,
			Description: "Scaffold .seal/config.json and point it at a program snapshot",
		},
	},
	SnapshotInvalid: {
		{
			Type:        RunCommand,
			Command:     "seal status",
			Safe:        true,
			Description: "Check snapshot path, format, and readability",
		},
	},
	ManifestInvalid: {
		{
			Type:        RunCommand,
			Command:     "seal init --assembly <name>",
			Safe:        true,
			Description: "Write a starter program.toml manifest under .seal/",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "seal init --force",
			Safe:        false,
			Description: "Rewrite .seal/config.json with defaults",
		},
	},
	StorageError: {
		{
			Type:        RunCommand,
			Command:     "seal status",
			Safe:        true,
			Description: "Check the .seal directory and database file permissions",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
