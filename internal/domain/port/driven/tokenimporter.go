package driven

import (
	"context"
	"errors"
	"fmt"
)

// ErrCLIToolMissing means the external gh CLI binary was not found on PATH.
var ErrCLIToolMissing = errors.New("gh CLI not installed")

// CLICommandError means the gh CLI ran but failed; Output carries its
// combined output for diagnostics.
type CLICommandError struct {
	Output string
	Err    error
}

func (e *CLICommandError) Error() string {
	return fmt.Sprintf("gh command failed: %v", e.Err)
}

func (e *CLICommandError) Unwrap() error { return e.Err }

// TokenImporter defines the driven port for importing a GitHub token from an
// external source (the gh CLI).
type TokenImporter interface {
	ImportToken(ctx context.Context) (string, error)
}
