// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/Oktaliem/ragproof/internal/resilience"
)

// Config holds the entire harness configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Target  TargetConfig  `mapstructure:"target" yaml:"target"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	// Readiness bounds the one-time environment bring-up probe.
	Readiness resilience.BackoffConfig `mapstructure:"readiness" yaml:"readiness"`
	Poll      PollBudgets              `mapstructure:"poll" yaml:"poll"`
	Report    ReportConfig             `mapstructure:"report" yaml:"report"`
}

// LoggerConfig controls the zap logger construction.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`

	// File output (rotated). Empty LogFile disables the file core.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// TargetConfig describes the document assistant deployment under test.
// The harness only ever observes it through the browser.
type TargetConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	HealthPath string `mapstructure:"health_path" yaml:"health_path"`
	Username   string `mapstructure:"username" yaml:"username"`
	Password   string `mapstructure:"password" yaml:"password"`
	// Model is the option value chosen in the model selector.
	Model string `mapstructure:"model" yaml:"model"`
}

// URL joins the base URL with a path.
func (t TargetConfig) URL(path string) string {
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return t.BaseURL + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return t.BaseURL + path
	}
	return u.ResolveReference(ref).String()
}

// BrowserConfig controls the Chrome instance driven over CDP.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// PollBudgets groups the per-concern poll configurations. Indexing is the
// slow path (embedding plus vector upsert); answers stream in faster.
type PollBudgets struct {
	Indexing resilience.PollConfig `mapstructure:"indexing" yaml:"indexing"`
	Answer   resilience.PollConfig `mapstructure:"answer" yaml:"answer"`
	// ActionRetries bounds the reset-and-retry loop for single actions.
	ActionRetries int `mapstructure:"action_retries" yaml:"action_retries"`
}

// ReportConfig controls the run report.
type ReportConfig struct {
	// Format is "json" or "text".
	Format     string `mapstructure:"format" yaml:"format"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// SetDefaults registers the default configuration values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "ragproof")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)

	v.SetDefault("target.base_url", "http://localhost:8000")
	v.SetDefault("target.health_path", "/health")
	v.SetDefault("target.model", "llama3.2:latest")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", 45*time.Second)
	v.SetDefault("browser.action_timeout", 15*time.Second)

	v.SetDefault("readiness.max_attempts", 10)
	v.SetDefault("readiness.initial_delay", 2500*time.Millisecond)
	v.SetDefault("readiness.backoff_factor", 1.5)
	v.SetDefault("readiness.max_delay", 15*time.Second)

	// Indexing lags uploads; the counters only move on a fresh render.
	v.SetDefault("poll.indexing.max_attempts", 20)
	v.SetDefault("poll.indexing.interval", 3*time.Second)
	v.SetDefault("poll.indexing.refresh_between_attempts", true)
	v.SetDefault("poll.indexing.refresh_timeout", 10*time.Second)

	v.SetDefault("poll.answer.max_attempts", 30)
	v.SetDefault("poll.answer.interval", 2*time.Second)
	v.SetDefault("poll.answer.refresh_between_attempts", false)

	v.SetDefault("poll.action_retries", 3)

	v.SetDefault("report.format", "json")
	v.SetDefault("report.output_path", "ragproof-report.json")
}

// Validate checks the invariants the rest of the harness relies on.
func (c *Config) Validate() error {
	if c.Target.BaseURL == "" {
		return fmt.Errorf("config: target.base_url is required")
	}
	if _, err := url.Parse(c.Target.BaseURL); err != nil {
		return fmt.Errorf("config: invalid target.base_url: %w", err)
	}
	if c.Readiness.MaxAttempts < 1 {
		return fmt.Errorf("config: readiness.max_attempts must be >= 1")
	}
	for name, pc := range map[string]resilience.PollConfig{
		"poll.indexing": c.Poll.Indexing,
		"poll.answer":   c.Poll.Answer,
	} {
		if pc.MaxAttempts < 1 {
			return fmt.Errorf("config: %s.max_attempts must be >= 1", name)
		}
		if pc.Interval <= 0 {
			return fmt.Errorf("config: %s.interval must be positive", name)
		}
	}
	if c.Poll.ActionRetries < 1 {
		return fmt.Errorf("config: poll.action_retries must be >= 1")
	}
	return nil
}
