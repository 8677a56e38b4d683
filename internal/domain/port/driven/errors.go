package driven

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy surfaced by the GitHub adapter and consumed by the engine's
// user-message mapping. Transport failures are never retried within a refresh
// round; the periodic refresh interval is the retry mechanism.
var (
	// ErrMissingToken means no GitHub token is configured.
	ErrMissingToken = errors.New("no github token configured")

	// ErrUnauthorized means GitHub rejected the token (HTTP 401).
	ErrUnauthorized = errors.New("github rejected the token")

	// ErrInvalidResponse means the server reply was not a usable GraphQL
	// response (malformed body, unexpected status, missing data).
	ErrInvalidResponse = errors.New("invalid response from github")

	// ErrNetwork means the request never produced an HTTP response (DNS,
	// timeout, connection reset).
	ErrNetwork = errors.New("network error")
)

// RateLimitError means the primary rate limit is exhausted (HTTP 403 with
// x-ratelimit-remaining: 0). ResetAt is zero when the reset header was
// absent.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return "github rate limit exceeded"
	}
	return fmt.Sprintf("github rate limit exceeded, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// GraphQLError carries the server's own message from a GraphQL errors array.
type GraphQLError struct {
	Message string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql error: %s", e.Message)
}
