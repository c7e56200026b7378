package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeInvalidInput  ErrorType = "invalid_input"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeTimeout       ErrorType = "timeout"
	ErrorTypePoolExhausted ErrorType = "pool_exhausted"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error represents a scraper error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error without an HTTP code
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	case ErrorTypeInvalidInput, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypeTimeout, ErrorTypePoolExhausted:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}

// rateLimitSignatures are message substrings the target emits when it is
// throttling a caller. Matched case-insensitively.
var rateLimitSignatures = []string{
	"401 unauthorized",
	"please wait a few minutes",
	"429",
	"rate limit",
}

// IsRateLimitSignature reports whether an error message matches one of the
// known throttling signatures from the target platform.
func IsRateLimitSignature(message string) bool {
	lower := strings.ToLower(message)
	for _, sig := range rateLimitSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
