// Package githubcli imports a GitHub token from the gh CLI's stored auth.
package githubcli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenImporter = (*Importer)(nil)

// Importer reads the gh CLI's active token via `gh auth token`.
type Importer struct {
	// binary overrides the executable name; tests point it at a stub.
	binary string
}

// NewImporter creates an Importer using the gh binary from PATH.
func NewImporter() *Importer {
	return &Importer{binary: "gh"}
}

// NewImporterWithBinary creates an Importer running the given executable.
func NewImporterWithBinary(binary string) *Importer {
	return &Importer{binary: binary}
}

// ImportToken runs `gh auth token` and returns the trimmed token. Returns
// driven.ErrCLIToolMissing when the binary is absent and a
// driven.CLICommandError when it exits non-zero or prints nothing.
func (i *Importer) ImportToken(ctx context.Context) (string, error) {
	path, err := exec.LookPath(i.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", driven.ErrCLIToolMissing, err)
	}

	out, err := exec.CommandContext(ctx, path, "auth", "token").CombinedOutput()
	if err != nil {
		return "", &driven.CLICommandError{Output: strings.TrimSpace(string(out)), Err: err}
	}

	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", &driven.CLICommandError{Err: errors.New("gh returned an empty token")}
	}

	return token, nil
}
