package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := &Error{Type: ErrorTypeRateLimit, Message: "slow down", Code: 429}
	assert.Equal(t, "rate_limit error (code 429): slow down", err.Error())
}

func TestIsType(t *testing.T) {
	base := New(ErrorTypeNetwork, "connection reset")
	wrapped := fmt.Errorf("fetch failed: %w", base)

	assert.True(t, IsType(base, ErrorTypeNetwork))
	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(wrapped, ErrorTypeRateLimit))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNetwork))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		retryable bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeInvalidInput, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeParsing, false},
		{ErrorTypeTimeout, false},
		{ErrorTypePoolExhausted, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.errorType))
		})
	}
}

func TestIsRateLimitSignature(t *testing.T) {
	tests := []struct {
		name    string
		message string
		match   bool
	}{
		{"unauthorized", "HTTP error: 401 Unauthorized", true},
		{"cooldown text", "Please wait a few minutes before you try again.", true},
		{"status 429", "request failed with status 429", true},
		{"literal rate limit", "Rate Limit exceeded for this endpoint", true},
		{"case insensitive", "RATE LIMIT", true},
		{"plain network error", "connection refused", false},
		{"not found", "404 page not found", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, IsRateLimitSignature(tt.message))
		})
	}
}
