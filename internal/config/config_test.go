// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "stagehand", cfg.Logger().ServiceName)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser().ExpectTimeout)
	assert.Equal(t, 30*time.Second, cfg.Network().Timeout)
	assert.Equal(t, "https://api.weatherbit.io", cfg.Targets().WeatherURL)
	assert.Equal(t, 2, cfg.Runner().Workers)
	assert.Equal(t, "text", cfg.Runner().ReportFormat)
	assert.Empty(t, cfg.Chance().Seed)
	require.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero workers", func(c *Config) { c.RunnerCfg.Workers = 0 }, "runner.workers must be a positive integer"},
		{"unknown report format", func(c *Config) { c.RunnerCfg.ReportFormat = "sarif" }, "runner.report_format"},
		{"missing storefront url", func(c *Config) { c.TargetsCfg.StorefrontURL = "" }, "targets.storefront_url is required"},
		{"non-http weather url", func(c *Config) { c.TargetsCfg.WeatherURL = "ftp://example.com" }, "targets.weather_url must be an http(s) URL"},
		{"negative rate", func(c *Config) { c.WeatherCfg.RequestsPerSecond = -1 }, "weather.requests_per_second"},
		{"tag without at sign", func(c *Config) { c.RunnerCfg.Tags = []string{"web"} }, "runner.tags"},
		{"zero expect timeout", func(c *Config) { c.BrowserCfg.ExpectTimeout = 0 }, "browser.expect_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// -- Loading Tests --

func TestNewConfigFromViper_YAMLAndEnv(t *testing.T) {
	t.Setenv("QAT_SWAG_USERNAME", "standard_user")
	t.Setenv("QAT_SWAG_PASSWORD", "secret_sauce")
	t.Setenv("QAT_WEATHER_BIT_API_KEY", "test-key")
	t.Setenv("QAT_CHANCE_SEED", "3b241101-e2bb-4255-8caf-4136c566a962")

	yamlConfig := []byte(`
targets:
  storefront_url: "https://shop.example.test/"
browser:
  headless: false
  expect_timeout: 2s
runner:
  workers: 4
  tags: ["@web"]
  report_format: json
`)
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.test/", cfg.Targets().StorefrontURL)
	assert.Equal(t, "https://api.weatherbit.io", cfg.Targets().WeatherURL, "defaults survive partial files")
	assert.False(t, cfg.Browser().Headless)
	assert.Equal(t, 2*time.Second, cfg.Browser().ExpectTimeout)
	assert.Equal(t, 4, cfg.Runner().Workers)
	assert.Equal(t, []string{"@web"}, cfg.Runner().Tags)
	assert.Equal(t, "json", cfg.Runner().ReportFormat)

	assert.Equal(t, "standard_user", cfg.Storefront().Username)
	assert.Equal(t, "secret_sauce", cfg.Storefront().Password)
	assert.Equal(t, "test-key", cfg.Weather().APIKey)
	assert.Equal(t, "3b241101-e2bb-4255-8caf-4136c566a962", cfg.Chance().Seed)
}

func TestNewConfigFromViper_InvalidFails(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("runner.workers", -3)

	_, err := NewConfigFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetChanceSeed("seed")
	cfg.SetRunnerTags([]string{"@api"})
	cfg.SetBrowserHeadless(false)

	assert.Equal(t, "seed", cfg.Chance().Seed)
	assert.Equal(t, []string{"@api"}, cfg.Runner().Tags)
	assert.False(t, cfg.Browser().Headless)
}
