// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Network() NetworkConfig
	Targets() TargetsConfig
	Storefront() StorefrontConfig
	Weather() WeatherConfig
	Chance() ChanceConfig
	Runner() RunnerConfig

	SetChanceSeed(seed string)
	SetRunnerTags(tags []string)
	SetBrowserHeadless(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	BrowserCfg    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	NetworkCfg    NetworkConfig    `mapstructure:"network" yaml:"network"`
	TargetsCfg    TargetsConfig    `mapstructure:"targets" yaml:"targets"`
	StorefrontCfg StorefrontConfig `mapstructure:"storefront" yaml:"storefront"`
	WeatherCfg    WeatherConfig    `mapstructure:"weather" yaml:"weather"`
	ChanceCfg     ChanceConfig     `mapstructure:"chance" yaml:"chance"`
	RunnerCfg     RunnerConfig     `mapstructure:"runner" yaml:"runner"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig       { return c.BrowserCfg }
func (c *Config) Network() NetworkConfig       { return c.NetworkCfg }
func (c *Config) Targets() TargetsConfig       { return c.TargetsCfg }
func (c *Config) Storefront() StorefrontConfig { return c.StorefrontCfg }
func (c *Config) Weather() WeatherConfig       { return c.WeatherCfg }
func (c *Config) Chance() ChanceConfig         { return c.ChanceCfg }
func (c *Config) Runner() RunnerConfig         { return c.RunnerCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetChanceSeed(seed string)   { c.ChanceCfg.Seed = seed }
func (c *Config) SetRunnerTags(tags []string) { c.RunnerCfg.Tags = tags }
func (c *Config) SetBrowserHeadless(b bool)   { c.BrowserCfg.Headless = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the automated browser.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Args     []string `mapstructure:"args" yaml:"args"`
	// ExecPath overrides the Chrome binary chromedp would otherwise discover.
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
	// ExpectTimeout bounds how long locators and assertions retry.
	ExpectTimeout time.Duration `mapstructure:"expect_timeout" yaml:"expect_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
}

// NetworkConfig tunes the network behavior of browser and API clients.
type NetworkConfig struct {
	Timeout           time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	NavigationTimeout time.Duration     `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Headers           map[string]string `mapstructure:"headers" yaml:"headers"`
	IgnoreTLSErrors   bool              `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// TargetsConfig carries the base URLs of the systems under test.
type TargetsConfig struct {
	StorefrontURL string `mapstructure:"storefront_url" yaml:"storefront_url"`
	WeatherURL    string `mapstructure:"weather_url" yaml:"weather_url"`
}

// StorefrontConfig holds the default storefront credentials.
type StorefrontConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// WeatherConfig holds the weather API key and client-side quota.
type WeatherConfig struct {
	APIKey            string  `mapstructure:"api_key" yaml:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// ChanceConfig holds the optional fixed seed for actor randomness.
type ChanceConfig struct {
	Seed string `mapstructure:"seed" yaml:"seed"`
}

// RunnerConfig controls how suites are scheduled and reported.
type RunnerConfig struct {
	Workers      int      `mapstructure:"workers" yaml:"workers"`
	Tags         []string `mapstructure:"tags" yaml:"tags"`
	ReportFormat string   `mapstructure:"report_format" yaml:"report_format"`
	ReportPath   string   `mapstructure:"report_path" yaml:"report_path"`
}

// NewDefaultConfig returns a configuration populated only with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stagehand")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.expect_timeout", "5s")
	v.SetDefault("browser.poll_interval", "100ms")
	v.SetDefault("browser.launch_timeout", "60s")

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.navigation_timeout", "30s")

	// -- Targets --
	v.SetDefault("targets.storefront_url", "https://www.saucedemo.com/")
	v.SetDefault("targets.weather_url", "https://api.weatherbit.io")

	// -- Weather --
	v.SetDefault("weather.requests_per_second", 1.0)
	v.SetDefault("weather.burst", 1)

	// -- Runner --
	v.SetDefault("runner.workers", 2)
	v.SetDefault("runner.report_format", "text")
	v.SetDefault("runner.report_path", "stdout")
}

// BindEnv maps the harness's established environment variable names onto
// their config keys.
func BindEnv(v *viper.Viper) {
	_ = v.BindEnv("targets.storefront_url", "QAT_SWAG_URL")
	_ = v.BindEnv("storefront.username", "QAT_SWAG_USERNAME")
	_ = v.BindEnv("storefront.password", "QAT_SWAG_PASSWORD")
	_ = v.BindEnv("targets.weather_url", "QAT_WEATHER_BIT_URL")
	_ = v.BindEnv("weather.api_key", "QAT_WEATHER_BIT_API_KEY")
	_ = v.BindEnv("chance.seed", "QAT_CHANCE_SEED")
}

// NewConfigFromViper builds and validates a Config from a populated viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	BindEnv(v)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.LoggerCfg.LogFile, err = homedir.Expand(c.LoggerCfg.LogFile); err != nil {
		return fmt.Errorf("logger.log_file: %w", err)
	}
	if c.RunnerCfg.ReportPath != "stdout" {
		if c.RunnerCfg.ReportPath, err = homedir.Expand(c.RunnerCfg.ReportPath); err != nil {
			return fmt.Errorf("runner.report_path: %w", err)
		}
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.RunnerCfg.Workers <= 0 {
		return fmt.Errorf("runner.workers must be a positive integer")
	}
	switch c.RunnerCfg.ReportFormat {
	case "text", "json", "junit":
	default:
		return fmt.Errorf("runner.report_format must be one of text, json, junit (got %q)", c.RunnerCfg.ReportFormat)
	}
	if c.BrowserCfg.ExpectTimeout <= 0 {
		return fmt.Errorf("browser.expect_timeout must be positive")
	}
	if err := validateBaseURL("targets.storefront_url", c.TargetsCfg.StorefrontURL); err != nil {
		return err
	}
	if err := validateBaseURL("targets.weather_url", c.TargetsCfg.WeatherURL); err != nil {
		return err
	}
	if c.WeatherCfg.RequestsPerSecond < 0 {
		return fmt.Errorf("weather.requests_per_second must not be negative")
	}
	for _, tag := range c.RunnerCfg.Tags {
		if !strings.HasPrefix(tag, "@") {
			return fmt.Errorf("runner.tags entries must start with '@' (got %q)", tag)
		}
	}
	return nil
}

func validateBaseURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL (got %q)", key, raw)
	}
	return nil
}
