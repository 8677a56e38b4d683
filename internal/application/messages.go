package application

import (
	"errors"
	"fmt"

	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// UserMessage translates an error from a sync or hydration call into a short
// sentence suitable for display. Server-provided GraphQL messages pass through
// verbatim; everything else maps to a fixed phrase per error class.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rateErr *driven.RateLimitError
	if errors.As(err, &rateErr) {
		if rateErr.ResetAt.IsZero() {
			return "GitHub rate limit reached. Try again shortly."
		}
		return fmt.Sprintf("GitHub rate limit reached. Resets at %s.", rateErr.ResetAt.Local().Format("15:04"))
	}

	var gqlErr *driven.GraphQLError
	if errors.As(err, &gqlErr) {
		return gqlErr.Message
	}

	var cliErr *driven.CLICommandError
	if errors.As(err, &cliErr) {
		return "The gh CLI could not produce a token. Run `gh auth login` and retry."
	}

	switch {
	case errors.Is(err, driven.ErrMissingToken):
		return "No GitHub token configured. Run `pulldeck token set` or `pulldeck token import`."
	case errors.Is(err, driven.ErrUnauthorized):
		return "GitHub rejected the token. Check that it is valid for this host."
	case errors.Is(err, driven.ErrCLIToolMissing):
		return "The gh CLI is not installed or not on PATH."
	case errors.Is(err, driven.ErrNetwork):
		return "Could not reach GitHub. Check your network connection."
	case errors.Is(err, driven.ErrInvalidResponse):
		return "GitHub returned an unexpected response. Try again later."
	default:
		return "Refresh failed. Try again later."
	}
}
