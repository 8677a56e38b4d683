package githubcli_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ericfisherdev/pulldeck/internal/adapter/driven/githubcli"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub creates an executable shell script standing in for the gh CLI.
func writeStub(t *testing.T, script string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "gh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestImportToken_Success(t *testing.T) {
	stub := writeStub(t, `echo "  ghp_from_cli  "`)
	importer := githubcli.NewImporterWithBinary(stub)

	token, err := importer.ImportToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ghp_from_cli", token)
}

func TestImportToken_BinaryMissing(t *testing.T) {
	importer := githubcli.NewImporterWithBinary(filepath.Join(t.TempDir(), "definitely-not-gh"))

	_, err := importer.ImportToken(context.Background())

	assert.ErrorIs(t, err, driven.ErrCLIToolMissing)
}

func TestImportToken_CommandFails(t *testing.T) {
	stub := writeStub(t, `echo "not logged in" >&2; exit 1`)
	importer := githubcli.NewImporterWithBinary(stub)

	_, err := importer.ImportToken(context.Background())

	var cmdErr *driven.CLICommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Output, "not logged in")
}

func TestImportToken_EmptyOutput(t *testing.T) {
	stub := writeStub(t, `exit 0`)
	importer := githubcli.NewImporterWithBinary(stub)

	_, err := importer.ImportToken(context.Background())

	var cmdErr *driven.CLICommandError
	require.ErrorAs(t, err, &cmdErr)
}
