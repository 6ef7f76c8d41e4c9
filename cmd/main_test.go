// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/stagehand/internal/observability"
)

// resetForTest isolates a test from package state, the working directory and
// harness environment variables, and returns a fresh root command.
func resetForTest(t *testing.T) *cobra.Command {
	t.Helper()

	cfgFile = ""
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	// Keep ./stagehand.yaml from a developer checkout out of the picture.
	t.Chdir(t.TempDir())
	for _, env := range []string{
		"QAT_CHANCE_SEED", "QAT_SWAG_URL", "QAT_SWAG_USERNAME", "QAT_SWAG_PASSWORD",
		"QAT_WEATHER_BIT_URL", "QAT_WEATHER_BIT_API_KEY",
		"QAT_RUNNER_WORKERS", "QAT_RUNNER_REPORT_FORMAT", "QAT_RUNNER_REPORT_PATH",
	} {
		t.Setenv(env, "")
	}
	t.Setenv("QAT_LOGGER_LEVEL", "error")

	return newRootCmd()
}

// executeCommand runs root with args and returns everything it printed.
func executeCommand(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
