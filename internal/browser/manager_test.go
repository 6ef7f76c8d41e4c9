// internal/browser/manager_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stagehand/internal/config"
)

func TestAllocatorFlags(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		flags := allocatorFlags(cfg.Browser(), cfg.Network(), "linux")

		assert.Equal(t, true, flags["headless"])
		assert.Equal(t, true, flags["disable-gpu"])
		assert.Equal(t, false, flags["ignore-certificate-errors"])
		assert.Equal(t, true, flags["no-sandbox"])
		assert.Equal(t, true, flags["disable-dev-shm-usage"])
	})

	t.Run("HeadlessDisabled", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{Headless: false}, config.NetworkConfig{}, "linux")
		assert.Equal(t, false, flags["headless"])
		assert.Equal(t, false, flags["disable-gpu"])
	})

	t.Run("SandboxFlagsOnlyOnLinux", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{}, config.NetworkConfig{}, "darwin")
		assert.NotContains(t, flags, "no-sandbox")
		assert.NotContains(t, flags, "disable-dev-shm-usage")
	})

	t.Run("IgnoreTLSErrors", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{}, config.NetworkConfig{IgnoreTLSErrors: true}, "linux")
		assert.Equal(t, true, flags["ignore-certificate-errors"])
	})

	t.Run("WithCustomArgs", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{
			Headless: true,
			Args:     []string{"--window-size=1280,720", "--lang=en-GB", "--mute-audio", "--", "--headless=false"},
		}, config.NetworkConfig{}, "linux")

		assert.Equal(t, "1280,720", flags["window-size"])
		assert.Equal(t, "en-GB", flags["lang"])
		assert.Equal(t, true, flags["mute-audio"])
		assert.Equal(t, "false", flags["headless"], "args override built-in flags")
		assert.NotContains(t, flags, "")
	})
}

func TestNewManagerReadsConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.ExecPath = "/opt/chrome/chrome"
	m := NewManager(cfg, zaptest.NewLogger(t))

	assert.Equal(t, "/opt/chrome/chrome", m.browser.ExecPath)
	assert.Greater(t, len(m.allocatorOptions()), len(allocatorFlags(cfg.Browser(), cfg.Network(), "darwin")))
	assert.Empty(t, m.sessions)
}
