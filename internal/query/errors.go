package query

import "errors"

var (
	// ErrRateLimitExhausted is returned once the shared overload counter
	// reaches its threshold. It is never retried by the client.
	ErrRateLimitExhausted = errors.New("rate limit exhausted")

	// ErrRetriesExhausted is returned when every attempt failed with a
	// transport error or a server error.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrInvalidRequest is returned for requests that cannot be built.
	ErrInvalidRequest = errors.New("invalid request")
)
