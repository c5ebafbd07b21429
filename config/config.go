// Package config manages application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"ytcurator/retry"
)

// Config holds all configuration for a curation run.
type Config struct {
	// PlaylistID is the playlist to curate.
	PlaylistID string `mapstructure:"playlist_id"`
	// CredentialsFile is the path to a Google service-account JSON key.
	CredentialsFile string `mapstructure:"credentials_file"`
	// Timezone is the IANA zone name used to render report timestamps.
	Timezone string `mapstructure:"timezone"`
	// Region is the ISO 3166-1 alpha-2 code used to evaluate regional
	// restrictions.
	Region string `mapstructure:"region"`
	// MaxRetained caps how many viewable entries are kept.
	MaxRetained int `mapstructure:"max_retained"`
	// DryRun computes and reports mutations without applying them.
	DryRun bool `mapstructure:"dry_run"`
	// RequestTimeout bounds the whole run, external calls included.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// APIRate caps Data API requests per second.
	APIRate float64 `mapstructure:"api_rate"`

	// MaxRetries is the maximum number of retries for failed API calls.
	MaxRetries int `mapstructure:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries.
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
	// BackoffMultiplier is the multiplier for exponential backoff (must be > 1).
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`
}

// ValidationError reports an invalid configuration value. It is returned
// before any external call is made.
type ValidationError struct {
	// Field is the offending configuration key.
	Field string
	// Reason describes what is wrong with the value.
	Reason string
}

// Error returns a string representation of the validation error.
func (e *ValidationError) Error() string {
	return "config: " + e.Field + ": " + e.Reason
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone:          "UTC",
		Region:            "US",
		MaxRetained:       10,
		RequestTimeout:    2 * time.Minute,
		APIRate:           4,
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Load layers configuration from defaults, an optional ytcurator.yaml in
// the working directory or ./config, and YTCURATOR_* environment
// variables. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("ytcurator")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("YTCURATOR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("playlist_id", "")
	v.SetDefault("credentials_file", "")
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("region", d.Region)
	v.SetDefault("max_retained", d.MaxRetained)
	v.SetDefault("dry_run", false)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("api_rate", d.APIRate)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("initial_backoff", d.InitialBackoff)
	v.SetDefault("max_backoff", d.MaxBackoff)
	v.SetDefault("backoff_multiplier", d.BackoffMultiplier)
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.PlaylistID == "" {
		return &ValidationError{Field: "playlist_id", Reason: "required"}
	}
	if c.MaxRetained < 0 {
		return &ValidationError{Field: "max_retained", Reason: "must be non-negative"}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return &ValidationError{Field: "timezone", Reason: fmt.Sprintf("unknown zone %q", c.Timezone)}
	}
	if c.RequestTimeout <= 0 {
		return &ValidationError{Field: "request_timeout", Reason: "must be positive"}
	}
	if c.APIRate <= 0 {
		return &ValidationError{Field: "api_rate", Reason: "must be positive"}
	}
	if c.MaxRetries < 0 {
		return &ValidationError{Field: "max_retries", Reason: "must be non-negative"}
	}
	if c.InitialBackoff <= 0 {
		return &ValidationError{Field: "initial_backoff", Reason: "must be positive"}
	}
	if c.MaxBackoff < c.InitialBackoff {
		return &ValidationError{Field: "max_backoff", Reason: "must be >= initial_backoff"}
	}
	if c.BackoffMultiplier <= 1 {
		return &ValidationError{Field: "backoff_multiplier", Reason: "must be > 1"}
	}
	return nil
}

// Location returns the parsed timezone. Call Validate first; an unknown
// zone fails there.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RetryConfig maps the retry knobs onto a retry.Config.
func (c *Config) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = c.MaxRetries
	cfg.InitialBackoff = c.InitialBackoff
	cfg.MaxBackoff = c.MaxBackoff
	cfg.Multiplier = c.BackoffMultiplier
	return cfg
}
