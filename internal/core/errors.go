// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Backtest errors
	ErrDataUnavailable  = &Error{Code: "DATA_UNAVAILABLE", Message: "no market data source returned usable history"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for backtest"}
	ErrInvalidStrategy  = &Error{Code: "INVALID_STRATEGY", Message: "unknown strategy"}

	// Market data errors
	ErrSourceFailed = &Error{Code: "SOURCE_FAILED", Message: "market data source failed"}
	ErrCacheMiss    = &Error{Code: "CACHE_MISS", Message: "cache miss"}

	// Request errors
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "invalid request"}
	ErrJobNotFound    = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}
	ErrJobNotComplete = &Error{Code: "JOB_NOT_COMPLETE", Message: "job has not completed"}
	ErrJobsSaturated  = &Error{Code: "JOBS_SATURATED", Message: "too many backtests in flight"}
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Integration errors
	ErrLLMFailed     = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
	ErrLLMDisabled   = &Error{Code: "LLM_DISABLED", Message: "no LLM provider configured"}
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archiving result failed"}
)
