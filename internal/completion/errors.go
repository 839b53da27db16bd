package completion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error is a failed completion call. Message carries the provider's
// human-readable description; the dispatcher inspects it for recoverable
// patterns.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s completion failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s completion failed: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RateLimitError indicates a completion provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// payloadSizePatterns are error-message fragments providers emit when a
// request body or array argument exceeds their limits. Matching any of them
// means a smaller payload may succeed.
var payloadSizePatterns = []string{
	"maximum context length",
	"context_length_exceeded",
	"too many tokens",
	"request too large",
	"array too long",
	"string too long",
	"payload size",
	"prompt is too long",
}

// IsPayloadSizeError reports whether err looks like a payload-size or
// array-length violation worth retrying with a smaller chunk.
func IsPayloadSizeError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	var ce *Error
	if errors.As(err, &ce) {
		msg = strings.ToLower(ce.Message)
	}
	for _, p := range payloadSizePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
