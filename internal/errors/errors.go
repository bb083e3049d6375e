// Package errors provides the error taxonomy for tailnetctl.
//
// Every failure surfaced by the access layer is one of five kinds:
// - Authentication errors (credential exchange or missing credentials)
// - Validation errors (caller-supplied value malformed or unsafe)
// - CLI execution errors (local tool exited non-zero or timed out)
// - API errors (control plane returned an error status)
// - Network errors (transport-level failure, retryable at the caller's discretion)
package errors

import (
	"errors"
	"fmt"
)

// Error categories for tailnetctl operations
var (
	ErrAuthentication = errors.New("authentication error")
	ErrValidation     = errors.New("validation error")
	ErrCLIExecution   = errors.New("cli execution error")
	ErrAPI            = errors.New("api error")
	ErrNetwork        = errors.New("network error")
)

// AuthenticationError represents a failed credential exchange or
// missing/invalid credentials.
type AuthenticationError struct {
	Endpoint string
	Message  string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("authentication failed against '%s': %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func (e *AuthenticationError) Is(target error) bool {
	return errors.Is(target, ErrAuthentication)
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(endpoint, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}

// IsAuthentication checks if an error is authentication-related
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// ValidationError represents input validation failures. Validation
// errors are never retried and are surfaced verbatim to the caller.
type ValidationError struct {
	Field   string
	Value   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(target, ErrValidation)
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// IsValidation checks if an error is validation-related
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// CLIExecutionError represents a local tool invocation that exited
// non-zero or was killed by the execution timeout. TimedOut
// distinguishes a timeout from a genuine tool exit code; a timed-out
// invocation always carries ExitCode -1.
type CLIExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *CLIExecutionError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("command '%s' timed out", e.Command)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("command '%s' exited with code %d", e.Command, e.ExitCode)
}

func (e *CLIExecutionError) Unwrap() error {
	return e.Err
}

func (e *CLIExecutionError) Is(target error) bool {
	return errors.Is(target, ErrCLIExecution)
}

// NewCLIExecutionError creates a new CLI execution error
func NewCLIExecutionError(command string, exitCode int, stderr string, err error) *CLIExecutionError {
	return &CLIExecutionError{
		Command:  command,
		ExitCode: exitCode,
		Stderr:   stderr,
		Err:      err,
	}
}

// NewCLITimeoutError creates a CLI execution error for a timed-out invocation
func NewCLITimeoutError(command string, err error) *CLIExecutionError {
	return &CLIExecutionError{
		Command:  command,
		ExitCode: -1,
		TimedOut: true,
		Err:      err,
	}
}

// IsCLIExecution checks if an error came from a local tool invocation
func IsCLIExecution(err error) bool {
	return errors.Is(err, ErrCLIExecution)
}

// APIError represents an error status returned by the control-plane API.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API %d %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
	}
	return fmt.Sprintf("API %d %s %s", e.StatusCode, e.Method, e.URL)
}

func (e *APIError) Is(target error) bool {
	return errors.Is(target, ErrAPI)
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, method, url, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}
}

// IsAPIStatus checks if an error represents a specific API status code
func IsAPIStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// IsAPI checks if an error is an API error status
func IsAPI(err error) bool {
	return errors.Is(err, ErrAPI)
}

// NetworkError represents a transport-level failure: timeout, DNS
// failure, connection refused. Safe to retry with backoff at the
// caller's discretion.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("network error during %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return errors.Is(target, ErrNetwork)
}

// NewNetworkError creates a new network error
func NewNetworkError(op, url string, err error) *NetworkError {
	return &NetworkError{
		Op:  op,
		URL: url,
		Err: err,
	}
}

// IsNetwork checks if an error is network-related
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsRetryable reports whether a caller applying its own retry policy
// may safely retry the failed operation. Validation, authentication
// and CLI failures are never retryable; network failures and a small
// set of API statuses are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsNetwork(err) {
		return true
	}
	return IsAPIStatus(err, 429) ||
		IsAPIStatus(err, 502) ||
		IsAPIStatus(err, 503) ||
		IsAPIStatus(err, 504)
}
