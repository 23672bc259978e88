package integration_tests

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/burstflow/internal/cli"
	"github.com/specialistvlad/burstflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_DisplaysHelp(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{nil, {"--help"}, {"run", "--help"}} {
		var out bytes.Buffer
		require.NoError(t, cli.Execute(context.Background(), &out, args))
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestCLI_RunWithLogbookAndJSONLogs(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": `
node "1" {
  type = "webhook"
}
`})
	logbook := filepath.Join(t.TempDir(), "progress.log")

	var out bytes.Buffer
	err := cli.Execute(context.Background(), &out, []string{
		"run", filepath.Join(dir, "main.hcl"),
		"--log-format", "json",
		"--logbook", logbook,
		"--success-rate", "1", "--min-latency", "0s", "--max-latency", "0s",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"msg":"run completed"`)
}

func TestCLI_MissingFileIsExitCode1(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := cli.Execute(context.Background(), &out, []string{"run", filepath.Join(t.TempDir(), "missing.hcl")})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, exitErr.Message, "failed to read workflow file")
}
