// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/stagehand/internal/config"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	root := resetForTest(t)

	out, err := executeCommand(t, root, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "stagehand version dev")
}

func TestVersionCmd(t *testing.T) {
	root := resetForTest(t)
	// A broken config must not stop the version command.
	t.Setenv("QAT_RUNNER_WORKERS", "0")

	out, err := executeCommand(t, root, "version")

	require.NoError(t, err)
	assert.Equal(t, "stagehand version dev\n", out)
}

func TestRootCmd_NoArgs(t *testing.T) {
	root := resetForTest(t)

	out, err := executeCommand(t, root)

	require.NoError(t, err)
	assert.Contains(t, out, "Stagehand runs actor-driven end-to-end suites")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "list")
}

func TestRootCmd_InvalidConfigFails(t *testing.T) {
	root := resetForTest(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runner:\n  workers: 0\n"), 0o600))

	_, err := executeCommand(t, root, "--config", path, "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner.workers")
}

func TestInitializeConfig(t *testing.T) {
	t.Run("DefaultsWithoutFile", func(t *testing.T) {
		resetForTest(t)
		v := viper.New()
		config.SetDefaults(v)

		require.NoError(t, initializeConfig(v))
		cfg, err := config.NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Runner().Workers)
		assert.Equal(t, "text", cfg.Runner().ReportFormat)
	})

	t.Run("FileInWorkingDirectory", func(t *testing.T) {
		resetForTest(t)
		yaml := "runner:\n  workers: 4\n  report_format: junit\nbrowser:\n  headless: false\n"
		require.NoError(t, os.WriteFile("stagehand.yaml", []byte(yaml), 0o600))
		v := viper.New()
		config.SetDefaults(v)

		require.NoError(t, initializeConfig(v))
		cfg, err := config.NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Runner().Workers)
		assert.Equal(t, "junit", cfg.Runner().ReportFormat)
		assert.False(t, cfg.Browser().Headless)
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		resetForTest(t)
		require.NoError(t, os.WriteFile("stagehand.yaml", []byte("runner:\n  workers: 4\n"), 0o600))
		t.Setenv("QAT_RUNNER_WORKERS", "7")
		t.Setenv("QAT_WEATHER_BIT_API_KEY", "env-key")
		v := viper.New()
		config.SetDefaults(v)

		require.NoError(t, initializeConfig(v))
		cfg, err := config.NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Runner().Workers)
		assert.Equal(t, "env-key", cfg.Weather().APIKey)
	})

	t.Run("MalformedFile", func(t *testing.T) {
		resetForTest(t)
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("runner: [unterminated\n"), 0o600))
		cfgFile = path
		v := viper.New()

		err := initializeConfig(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

func TestGetConfigFromContext(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	assert.Error(t, err)

	cfg := config.NewDefaultConfig()
	got, err := getConfigFromContext(context.WithValue(context.Background(), configKey, cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestExecute_ExitCodes(t *testing.T) {
	newCmd := func(err error) *cobra.Command {
		return &cobra.Command{
			Use:           "stub",
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE:          func(*cobra.Command, []string) error { return err },
		}
	}
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"Success", nil, 0, ""},
		{"SuiteFailures", ErrRunFailed, 1, ""},
		{"OtherError", errors.New("boom"), 1, "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCmd(tt.err)
			cmd.SetArgs([]string{})
			var stderr bytes.Buffer

			code := execute(context.Background(), cmd, &stderr)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantErr == "" {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
		})
	}
}
