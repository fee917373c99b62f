package llm

import (
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMalformedOutput indicates the model answered with content that could not
// be used: no JSON object, invalid JSON, missing required fields or an empty
// reply.
type ErrMalformedOutput struct {
	Raw string
	Err error
}

func (e *ErrMalformedOutput) Error() string {
	return fmt.Sprintf("malformed AI output: %v", e.Err)
}

func (e *ErrMalformedOutput) Unwrap() error { return e.Err }
