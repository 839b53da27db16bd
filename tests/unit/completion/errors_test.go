package completion_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fundscope/internal/completion"
)

func TestRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := completion.NewRateLimitError("openai", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)

	err = completion.NewRateLimitError("openai", errors.New("429"), 12)
	assert.Equal(t, 12*time.Second, err.RetryAfter)
}

func TestRateLimitError_Unwrap(t *testing.T) {
	base := errors.New("too many requests")
	err := completion.NewRateLimitError("claude", base, 5)

	wrapped := fmt.Errorf("call failed: %w", err)
	var rateErr *completion.RateLimitError
	assert.True(t, errors.As(wrapped, &rateErr))
	assert.ErrorIs(t, wrapped, base)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, completion.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, completion.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 30, completion.ParseRetryAfterHeader("30"))
}

func TestIsPayloadSizeError(t *testing.T) {
	assert.False(t, completion.IsPayloadSizeError(nil))
	assert.False(t, completion.IsPayloadSizeError(errors.New("connection refused")))
	assert.True(t, completion.IsPayloadSizeError(errors.New("maximum context length exceeded")))
	assert.True(t, completion.IsPayloadSizeError(&completion.Error{
		Provider:   "openai",
		StatusCode: 400,
		Message:    "Request too large for gpt-4o-mini",
	}))
}
