package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit indicates the endpoint returned 429. Transient.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the endpoint is down, timing out or
// returning 5xx. Transient.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that is not
// valid JSON or does not conform to the requested schema. Permanent
// apart from a single schema-miss retry.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrBadRequest indicates the request itself was rejected (auth
// failure, malformed request). Permanent; never retried.
type ErrBadRequest struct {
	Err error
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("request rejected: %v", e.Err)
}

func (e *ErrBadRequest) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated at the
// MaxTokens limit. A configuration problem, not transient.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated: max tokens exceeded"
}
