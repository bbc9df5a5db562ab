package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// GraphInvalid indicates the module graph declaration could not be loaded
	GraphInvalid ErrorCode = "GRAPH_INVALID"
	// StepUnresolved indicates an enabled scan step was used before its outputs were resolved
	StepUnresolved ErrorCode = "STEP_UNRESOLVED"
	// ConfigInvalid indicates the configuration file is unreadable or fails validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// OutputDirFailed indicates the aggregation target's directory could not be created
	OutputDirFailed ErrorCode = "OUTPUT_DIR_FAILED"
	// TargetOpenFailed indicates the aggregation target could not be opened for writing
	TargetOpenFailed ErrorCode = "TARGET_OPEN_FAILED"
	// SourceOpenFailed indicates a snapshot file could not be opened
	SourceOpenFailed ErrorCode = "SOURCE_OPEN_FAILED"
	// CopyFailed indicates streaming a snapshot file into the target, or flushing it, failed
	CopyFailed ErrorCode = "COPY_FAILED"
	// TargetCloseFailed indicates closing the target failed
	TargetCloseFailed ErrorCode = "TARGET_CLOSE_FAILED"
	// HistoryUnavailable indicates the run history database could not be used
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// CheckPath suggests inspecting a filesystem path
	CheckPath FixActionType = "check-path"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Description string        `json:"description,omitempty"`
}

// ApiscanError carries a stable code, the path involved (if any) and the
// underlying cause.
type ApiscanError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Path           string      `json:"path,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// NewApiscanError creates a new ApiscanError. Suggested fixes default to the
// ones registered for code in ErrorActions.
func NewApiscanError(code ErrorCode, message string, cause error) *ApiscanError {
	return &ApiscanError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// IO wraps an I/O failure on path.
func IO(code ErrorCode, message, path string, cause error) *ApiscanError {
	return NewApiscanError(code, message, cause).WithPath(path)
}

// Error implements the error interface
func (e *ApiscanError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ApiscanError) Unwrap() error {
	return e.cause
}

// WithPath records the path the failing operation was working on.
func (e *ApiscanError) WithPath(path string) *ApiscanError {
	e.Path = path
	for i := range e.SuggestedFixes {
		if e.SuggestedFixes[i].Type == CheckPath && e.SuggestedFixes[i].Path == "" {
			e.SuggestedFixes[i].Path = path
		}
	}
	return e
}

// CodeOf returns the code of the first ApiscanError in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var ae *ApiscanError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	GraphInvalid: {
		{Type: RunCommand, Command: "apiscan modules", Description: "Inspect the declared module graph"},
	},
	StepUnresolved: {
		{Type: RunCommand, Command: "apiscan sources", Description: "Resolve scan step outputs before aggregating"},
	},
	ConfigInvalid: {
		{Type: RunCommand, Command: "apiscan init --force", Description: "Rewrite .apiscan/config.json with defaults"},
	},
	OutputDirFailed: {
		{Type: CheckPath, Description: "Check permissions on the build output directory"},
	},
	TargetOpenFailed: {
		{Type: CheckPath, Description: "Check the target is writable and not a directory"},
	},
	SourceOpenFailed: {
		{Type: CheckPath, Description: "Re-run the module's scan step; its snapshot is missing"},
	},
	CopyFailed: {
		{Type: CheckPath, Description: "Check free disk space and re-run the aggregation"},
	},
}

// GetSuggestedFixes returns a copy of the suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	fixes, ok := ErrorActions[code]
	if !ok {
		return nil
	}
	out := make([]FixAction, len(fixes))
	copy(out, fixes)
	return out
}
