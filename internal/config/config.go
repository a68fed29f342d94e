// Package config loads orchestrator settings from the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	// Config holds configuration settings for the orchestrator
	Config struct {
		// API server
		APIHost  string
		APIPort  int
		LogLevel string

		// Engine
		StepTimeout     time.Duration
		ShutdownTimeout time.Duration

		// Connectors
		CRMBucketURL    string
		CRMDataKey      string
		ReportBucketURL string
		ReportPrefix    string
		RedisAddr       string
		RedisPassword   string
		RedisDB         int
		ChatChannel     string
		SMTPAddr        string
		SMTPFrom        string
	}
)

const (
	DefaultAPIHost         = "0.0.0.0"
	DefaultAPIPort         = 8080
	DefaultStepTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	MaxTCPPort             = 65535

	DefaultCRMBucketURL    = "file://./data?create_dir=true"
	DefaultCRMDataKey      = "crm/customers.json"
	DefaultReportBucketURL = "file://./reports?create_dir=true"
	DefaultReportPrefix    = "reports/"

	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisDB     = 0
	DefaultChatChannel = "maestro.notifications"

	DefaultSMTPAddr = "localhost:25"
	DefaultSMTPFrom = "maestro@localhost"

	// Upper bound for duration settings read from the environment
	MaxStepTimeout = 365 * 24 * time.Hour
)

var (
	ErrInvalidAPIPort     = errors.New("invalid API port")
	ErrInvalidStepTimeout = errors.New("step timeout cannot be negative")
	ErrCRMBucketEmpty     = errors.New("CRM bucket URL empty")
	ErrReportBucketEmpty  = errors.New("report bucket URL empty")
)

// NewDefaultConfig creates a configuration with sensible defaults for all
// engine and connector settings
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        "info",
		StepTimeout:     DefaultStepTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		CRMBucketURL:    DefaultCRMBucketURL,
		CRMDataKey:      DefaultCRMDataKey,
		ReportBucketURL: DefaultReportBucketURL,
		ReportPrefix:    DefaultReportPrefix,
		RedisAddr:       DefaultRedisAddr,
		RedisDB:         DefaultRedisDB,
		ChatChannel:     DefaultChatChannel,
		SMTPAddr:        DefaultSMTPAddr,
		SMTPFrom:        DefaultSMTPFrom,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("CRM_BUCKET_URL", &c.CRMBucketURL)
	loadEnvString("CRM_DATA_KEY", &c.CRMDataKey)
	loadEnvString("REPORT_BUCKET_URL", &c.ReportBucketURL)
	loadEnvString("REPORT_PREFIX", &c.ReportPrefix)
	loadEnvString("REDIS_ADDR", &c.RedisAddr)
	loadEnvString("REDIS_PASSWORD", &c.RedisPassword)
	loadEnvString("CHAT_CHANNEL", &c.ChatChannel)
	loadEnvString("SMTP_ADDR", &c.SMTPAddr)
	loadEnvString("SMTP_FROM", &c.SMTPFrom)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("REDIS_DB", &c.RedisDB, -1, 15); err != nil {
		return err
	}

	if err := loadEnvDuration(
		"STEP_TIMEOUT", &c.StepTimeout, MaxStepTimeout,
	); err != nil {
		return err
	}
	return loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, MaxStepTimeout,
	)
}

// Validate checks that all configuration values are usable
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.StepTimeout < 0 {
		return ErrInvalidStepTimeout
	}
	if c.CRMBucketURL == "" {
		return ErrCRMBucketEmpty
	}
	if c.ReportBucketURL == "" {
		return ErrReportBucketEmpty
	}
	return nil
}

func loadEnvString(key string, dst *string) {
	if s := os.Getenv(key); s != "" {
		*dst = s
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads key as a Go duration string ("45s", "2m"). A zero
// value is allowed; it disables the bound the setting controls
func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if d < 0 || d > max {
		return fmt.Errorf("invalid %s: %s out of range [0, %s]", key, d, max)
	}
	*dst = d
	return nil
}
