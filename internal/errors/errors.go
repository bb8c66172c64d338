// Package errors provides structured error types for gentest.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes for gentest operations.
const (
	// Run context errors
	CodeRunAlreadyBuilt     = "RUN_001" // Build invoked twice
	CodeRunDirectoryAlready = "RUN_002" // Target directory set twice
	CodeRunMissingDirectory = "RUN_003" // No directory and temp dir disabled
	CodeRunInvalidArguments = "RUN_004" // Arguments neither string nor array
	CodeRunInvalidDeps      = "RUN_005" // Dependencies not an array
	CodeRunInvalidLocalCfg  = "RUN_006" // Local config not an object
	CodeRunNotReady         = "RUN_007" // Result requested before any run
	CodeRunNoResult         = "RUN_008" // Current result requested before any result
	CodeRunUnknownGenerator = "RUN_009" // Generator value of unsupported type
	CodeRunConfigAfterBuild = "RUN_010" // Builder call after build started

	// Prompt errors
	CodePromptMissingAnswer = "PROMPT_001" // Strict mode missing answer

	// Workspace errors
	CodeWorkspaceNotFound      = "WS_001" // Directory does not exist
	CodeWorkspaceCleanupRefuse = "WS_002" // Cleanup of a non temporary dir
	CodeWorkspaceUnsafePath    = "WS_003" // Root or current directory

	// Environment errors
	CodeEnvNotRegistered = "ENV_001" // Namespace not registered
	CodeEnvNoLoader      = "ENV_002" // Path registration without loader
	CodeEnvInvalidGen    = "ENV_003" // Invalid generator definition

	// Assertion errors
	CodeAssertionFailed = "ASSERT_001"
)

// HarnessError is the structured error type for gentest operations.
type HarnessError struct {
	Code    string         `json:"code"`              // Error code (e.g., "RUN_001")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (path, namespace, etc.)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *HarnessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a HarnessError with the same code.
// This lets exported sentinels match errors carrying extra details.
func (e *HarnessError) Is(target error) bool {
	t, ok := target.(*HarnessError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detail to the error.
func (e *HarnessError) WithDetail(key string, value any) *HarnessError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *HarnessError) WithCause(err error) *HarnessError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *HarnessError) MarshalJSON() ([]byte, error) {
	type alias HarnessError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// New creates a new HarnessError.
func New(code, message string) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new HarnessError with formatted message.
func Newf(code, format string, args ...any) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a HarnessError.
func Wrap(code, message string, err error) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted HarnessError.
func Wrapf(code string, err error, format string, args ...any) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Run Context Errors ---

// AlreadyBuilt creates an error for a second build attempt.
func AlreadyBuilt() *HarnessError {
	return New(CodeRunAlreadyBuilt, "run context already built")
}

// DirectoryAlreadySet creates an error for a second target directory.
func DirectoryAlreadySet(current string) *HarnessError {
	return Newf(CodeRunDirectoryAlready, "test directory already set to %s", current).
		WithDetail("dir", current)
}

// MissingDirectory creates an error for a run with neither a directory nor temp mode.
func MissingDirectory() *HarnessError {
	return New(CodeRunMissingDirectory, "a target directory is required when tmpdir is disabled")
}

// InvalidArguments creates an error for arguments of an unsupported type.
func InvalidArguments(value any) *HarnessError {
	return Newf(CodeRunInvalidArguments, "arguments must be a string or a []string, got %T", value).
		WithDetail("type", fmt.Sprintf("%T", value))
}

// InvalidDependencies creates an error for dependencies that are not a list.
func InvalidDependencies(value any) *HarnessError {
	return Newf(CodeRunInvalidDeps, "dependencies must be a list, got %T", value).
		WithDetail("type", fmt.Sprintf("%T", value))
}

// InvalidLocalConfig creates an error for local config that is not an object.
func InvalidLocalConfig(value any) *HarnessError {
	return Newf(CodeRunInvalidLocalCfg, "local config must be an object, got %T", value).
		WithDetail("type", fmt.Sprintf("%T", value))
}

// NotReady creates an error for result access before the run started.
func NotReady() *HarnessError {
	return New(CodeRunNotReady, "run context is not ready: call Run, Start or Build first")
}

// NoResult creates an error for current result access before any run finished.
func NoResult() *HarnessError {
	return New(CodeRunNoResult, "no run result available yet")
}

// UnknownGenerator creates an error for a generator value of unsupported type.
func UnknownGenerator(value any) *HarnessError {
	return Newf(CodeRunUnknownGenerator, "generator must be a namespace, a path or a factory, got %T", value).
		WithDetail("type", fmt.Sprintf("%T", value))
}

// ConfigAfterBuild creates an error for a builder call after the build started.
func ConfigAfterBuild(method string) *HarnessError {
	return Newf(CodeRunConfigAfterBuild, "%s called after the run context was built", method).
		WithDetail("method", method)
}

// --- Prompt Errors ---

// MissingAnswer creates an error for an unanswered question in strict mode.
func MissingAnswer(question, questionType string) *HarnessError {
	return Newf(CodePromptMissingAnswer, "answer for %s question %q is missing", questionType, question).
		WithDetail("question", question).
		WithDetail("type", questionType)
}

// --- Workspace Errors ---

// DirectoryNotFound creates an error for a missing directory.
func DirectoryNotFound(path string, err error) *HarnessError {
	return Wrapf(CodeWorkspaceNotFound, err, "directory not found: %s", path).
		WithDetail("path", path)
}

// CleanupRefused creates an error for cleanup of a directory that is not temporary.
func CleanupRefused(path string) *HarnessError {
	return Newf(CodeWorkspaceCleanupRefuse, "refusing to remove %s: not a temporary directory", path).
		WithDetail("path", path)
}

// UnsafePath creates an error for an operation that would touch root or cwd.
func UnsafePath(path, reason string) *HarnessError {
	return Newf(CodeWorkspaceUnsafePath, "unsafe directory %s: %s", path, reason).
		WithDetail("path", path).
		WithDetail("reason", reason)
}

// --- Environment Errors ---

// NotRegistered creates an error for an unknown namespace.
func NotRegistered(namespace string) *HarnessError {
	return Newf(CodeEnvNotRegistered, "generator %s is not registered", namespace).
		WithDetail("namespace", namespace)
}

// NoLoader creates an error for path registration without a loader.
func NoLoader(path string) *HarnessError {
	return Newf(CodeEnvNoLoader, "no path loader configured to register %s", path).
		WithDetail("path", path)
}

// InvalidGenerator creates an error for a malformed generator definition.
func InvalidGenerator(path string, err error) *HarnessError {
	return Wrap(CodeEnvInvalidGen, "invalid generator definition", err).
		WithDetail("path", path)
}

// --- Assertion Errors ---

// AssertionFailed creates an assertion failure.
func AssertionFailed(format string, args ...any) *HarnessError {
	return Newf(CodeAssertionFailed, format, args...)
}

// HasCode checks if an error is a HarnessError with the given code.
// It handles wrapped errors by unwrapping to find a HarnessError.
func HasCode(err error, code string) bool {
	var herr *HarnessError
	if errors.As(err, &herr) {
		return herr.Code == code
	}
	return false
}

// Code returns the error code if err is a HarnessError, empty string otherwise.
// It handles wrapped errors by unwrapping to find a HarnessError.
func Code(err error) string {
	var herr *HarnessError
	if errors.As(err, &herr) {
		return herr.Code
	}
	return ""
}
