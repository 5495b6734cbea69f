package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	DefaultScheme         string                 `mapstructure:"default_scheme"`
	HTTPVersion           string                 `mapstructure:"http_version"`
	InitScope             string                 `mapstructure:"init_scope"`
	HTTPDebug             bool                   `mapstructure:"http_debug"`
	RequestTimeoutSeconds int64                  `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration          `mapstructure:"-"`
	Version               httpclient.HTTPVersion `mapstructure:"-"`
	Scope                 httpclient.InitScope   `mapstructure:"-"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`

	ReportersFile      string        `mapstructure:"reporters_file"`
	RunIntervalSeconds int64         `mapstructure:"run_interval_seconds"`
	RunInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "scrafurl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "warn")
	v.SetDefault("default_scheme", "http")
	v.SetDefault("http_version", "")
	v.SetDefault("init_scope", "default")
	v.SetDefault("http_debug", false)
	v.SetDefault("request_timeout_seconds", 0) // no timeout
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))
	v.SetDefault("reporters_file", "")
	v.SetDefault("run_interval_seconds", 0) // run once

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.DefaultScheme = strings.ToLower(strings.TrimSpace(c.DefaultScheme))
	if c.DefaultScheme != "http" && c.DefaultScheme != "https" {
		return fmt.Errorf("invalid default_scheme %q (expected http or https)", c.DefaultScheme)
	}

	version, err := httpclient.ParseHTTPVersion(c.HTTPVersion)
	if err != nil {
		return fmt.Errorf("invalid http_version: %w", err)
	}
	c.Version = version

	scope, err := httpclient.ParseInitScope(c.InitScope)
	if err != nil {
		return fmt.Errorf("invalid init_scope: %w", err)
	}
	c.Scope = scope

	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	c.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second

	if c.JournalTTLSeconds <= 0 {
		return fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if c.JournalCleanupSeconds <= 0 {
		return fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	c.JournalTTL = time.Duration(c.JournalTTLSeconds) * time.Second
	c.JournalCleanupInterval = time.Duration(c.JournalCleanupSeconds) * time.Second

	if c.RunIntervalSeconds < 0 {
		return fmt.Errorf("invalid run_interval_seconds (must be zero or positive seconds)")
	}
	c.RunInterval = time.Duration(c.RunIntervalSeconds) * time.Second

	return nil
}

// EngineConfig builds the transport engine settings.
func (c *Config) EngineConfig(log httpclient.Logger) httpclient.EngineConfig {
	return httpclient.EngineConfig{
		InitScope: c.Scope,
		Debug:     c.HTTPDebug,
		Logger:    log,
	}
}

// ClientOptions builds the per-client options.
func (c *Config) ClientOptions(engine httpclient.Engine, log httpclient.Logger) []httpclient.Option {
	return []httpclient.Option{
		httpclient.WithEngine(engine),
		httpclient.WithDefaultScheme(c.DefaultScheme),
		httpclient.WithHTTPVersion(c.Version),
		httpclient.WithTimeout(c.RequestTimeout),
		httpclient.WithLogger(log),
	}
}
