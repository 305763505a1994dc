// Package config provides configuration management for the ingestion worker.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL           = errors.New("shab.base_url is required")
	ErrInvalidBaseURL           = errors.New("shab.base_url must be a valid http(s) URL")
	ErrInvalidTimeout           = errors.New("shab.timeout_sec must be at least 1")
	ErrInvalidRateLimit         = errors.New("shab.rate_limit_per_sec must be positive")
	ErrInvalidPageSize          = errors.New("shab.page_size must be at least 1")
	ErrInvalidBatchSize         = errors.New("pipeline.batch_size must be at least 1")
	ErrInvalidBatchDelay        = errors.New("pipeline.inter_batch_delay_ms must be non-negative")
	ErrInvalidConcurrency       = errors.New("pipeline.max_concurrency must be non-negative")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidRetentionDays     = errors.New("cleanup.retention_days must be at least 1")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete ingestion worker configuration.
type Config struct {
	SHAB     SHABConfig     `yaml:"shab"`
	Database DatabaseConfig `yaml:"database"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Retry    RetryPolicy    `yaml:"retry"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SHABConfig contains settings for the gazette API client.
type SHABConfig struct {
	BaseURL         string  `yaml:"base_url"`
	UserAgent       string  `yaml:"user_agent"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateBurst       int     `yaml:"rate_burst"`
	PageSize        int     `yaml:"page_size"`
}

// GetTimeout returns the per-request timeout duration.
func (s *SHABConfig) GetTimeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// DatabaseConfig contains PostgreSQL connection settings. URL may be left
// empty in the file and supplied via the DATABASE_URL environment variable.
type DatabaseConfig struct {
	URL               string `yaml:"url"`
	MaxConns          int    `yaml:"max_conns"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
}

// GetConnectTimeout returns the connection timeout duration.
func (d *DatabaseConfig) GetConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutSec) * time.Second
}

// PipelineConfig contains batch orchestration settings.
type PipelineConfig struct {
	BatchSize         int `yaml:"batch_size"`
	InterBatchDelayMs int `yaml:"inter_batch_delay_ms"`
	MaxConcurrency    int `yaml:"max_concurrency"`
}

// GetInterBatchDelay returns the pause between batches.
func (p *PipelineConfig) GetInterBatchDelay() time.Duration {
	return time.Duration(p.InterBatchDelayMs) * time.Millisecond
}

// EffectiveConcurrency returns the worker limit per batch. Zero means
// one worker per batch slot.
func (p *PipelineConfig) EffectiveConcurrency() int {
	if p.MaxConcurrency > 0 {
		return p.MaxConcurrency
	}

	return p.BatchSize
}

// RetryPolicy defines retry behavior for transient fetch failures. The
// policy is applied by the orchestrator, never by the fetch client itself.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// CleanupConfig controls the expired-auction purge.
type CleanupConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the documented defaults. A missing config file is
// not an error; the worker runs on defaults plus environment overrides.
func DefaultConfig() *Config {
	return &Config{
		SHAB: SHABConfig{
			BaseURL:         "https://www.shab.ch/api/v1",
			UserAgent:       "AuctionProperty/1.0",
			TimeoutSec:      30,
			RateLimitPerSec: 5,
			RateBurst:       5,
			PageSize:        100,
		},
		Database: DatabaseConfig{
			MaxConns:          4,
			ConnectTimeoutSec: 10,
		},
		Pipeline: PipelineConfig{
			BatchSize:         5,
			InterBatchDelayMs: 1000,
		},
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    1000,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
		},
		Cleanup: CleanupConfig{
			RetentionDays: 365,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults, then
// applies environment overrides. An empty path skips the file entirely.
func LoadConfig(filepath string) (*Config, error) {
	cfg := DefaultConfig()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values for the
// settings that differ per deployment.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}

	if v := os.Getenv("SHAB_BASE_URL"); v != "" {
		c.SHAB.BaseURL = v
	}

	if v := os.Getenv("SHAB_USER_AGENT"); v != "" {
		c.SHAB.UserAgent = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration. Database.URL is deliberately not
// required here; commands that touch storage enforce it themselves.
func (c *Config) Validate() error {
	if c.SHAB.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if u, err := url.Parse(c.SHAB.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}

	if c.SHAB.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.SHAB.RateLimitPerSec <= 0 {
		return ErrInvalidRateLimit
	}

	if c.SHAB.PageSize < 1 {
		return ErrInvalidPageSize
	}

	if c.Pipeline.BatchSize < 1 {
		return ErrInvalidBatchSize
	}

	if c.Pipeline.InterBatchDelayMs < 0 {
		return ErrInvalidBatchDelay
	}

	if c.Pipeline.MaxConcurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Cleanup.RetentionDays < 1 {
		return ErrInvalidRetentionDays
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// RedactDSN masks the password portion of a connection string for logging.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}

	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}

	return u.String()
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{BaseURL: %s, BatchSize: %d, MaxAttempts: %d}",
		c.SHAB.BaseURL,
		c.Pipeline.BatchSize,
		c.Retry.MaxAttempts,
	)
}
