// Package config loads CLI configuration from environment variables and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/pagetranslate/pagetranslate/pkg/client"
	"github.com/pagetranslate/pagetranslate/pkg/retry"
	"github.com/pagetranslate/pagetranslate/pkg/translator"
)

// Config holds all client configuration.
type Config struct {
	// Backend
	Backend string
	BaseURL string

	// Credentials
	Email       string
	Password    string
	Fingerprint string
	ClientUUID  string

	// Transfer
	Streams     int
	MaxInFlight int // 0 = no cap
	MaxAttempts int
	RetryWait   time.Duration // 0 = retry immediately
	Timeout     time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics textfile (optional)
	MetricsTextfile string

	// S3 (optional; enables s3:// locations)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Enabled   bool
}

// Load reads configuration from the environment. Variables in envFile
// (default ".env") are applied first without overriding the real
// environment; a missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Backend:         envOr("PAGETRANSLATE_BACKEND", string(translator.KindIchigo)),
		BaseURL:         envOr("PAGETRANSLATE_BASE_URL", client.DefaultBaseURL),
		Email:           envOr("PAGETRANSLATE_EMAIL", ""),
		Password:        envOr("PAGETRANSLATE_PASSWORD", ""),
		Fingerprint:     envOr("PAGETRANSLATE_FINGERPRINT", ""),
		ClientUUID:      envOr("PAGETRANSLATE_CLIENT_UUID", ""),
		Streams:         envInt("PAGETRANSLATE_STREAMS", translator.DefaultStreams),
		MaxInFlight:     envInt("PAGETRANSLATE_MAX_IN_FLIGHT", 0),
		MaxAttempts:     envInt("PAGETRANSLATE_MAX_ATTEMPTS", retry.DefaultConfig().MaxAttempts),
		RetryWait:       envDuration("PAGETRANSLATE_RETRY_WAIT", 0),
		Timeout:         envDuration("PAGETRANSLATE_TIMEOUT", 2*time.Minute),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "console"),
		MetricsTextfile: envOr("METRICS_TEXTFILE", ""),
		S3Endpoint:      envOr("S3_ENDPOINT", ""),
		S3Region:        envOr("S3_REGION", "us-east-1"),
		S3AccessKey:     envOr("S3_ACCESS_KEY", ""),
		S3SecretKey:     envOr("S3_SECRET_KEY", ""),
		S3Enabled:       envBool("S3_ENABLED", false),
	}

	if cfg.S3Endpoint != "" || cfg.S3AccessKey != "" {
		cfg.S3Enabled = true
	}

	if cfg.ClientUUID == "" {
		cfg.ClientUUID = uuid.NewString()
	}

	return cfg, nil
}

// Validate checks the fields required to log in and translate.
func (c *Config) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("PAGETRANSLATE_EMAIL is required")
	}
	if c.Password == "" {
		return fmt.Errorf("PAGETRANSLATE_PASSWORD is required")
	}
	if c.Fingerprint == "" {
		return fmt.Errorf("PAGETRANSLATE_FINGERPRINT is required")
	}
	if c.Streams < 1 {
		return fmt.Errorf("PAGETRANSLATE_STREAMS must be at least 1, got %d", c.Streams)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("PAGETRANSLATE_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// RetryConfig returns the download retry policy.
func (c *Config) RetryConfig() retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = c.MaxAttempts
	rc.InitialWait = c.RetryWait
	return rc
}

// Credentials returns the login and identity fields.
func (c *Config) Credentials() translator.Credentials {
	return translator.Credentials{
		Email:       c.Email,
		Password:    c.Password,
		Fingerprint: c.Fingerprint,
		ClientUUID:  c.ClientUUID,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
