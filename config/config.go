// Package config loads the function configuration from the environment.
// Configuration is read once at process start and never mutated after.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variable names. TAGS, COMPANY_NAME and CROSS_ACCOUNT_ROLE
// form the watch-list contract; the rest are operational.
const (
	EnvTags              = "TAGS"
	EnvCompanyName       = "COMPANY_NAME"
	EnvCrossAccountRole  = "CROSS_ACCOUNT_ROLE"
	EnvLogLevel          = "LOG_LEVEL"
	EnvHandleTimeout     = "HANDLE_TIMEOUT"
	EnvTelemetryDisabled = "TELEMETRY_DISABLED"
	EnvOTELEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvOTELInsecure      = "OTEL_EXPORTER_INSECURE"
)

// Config is the process-wide configuration.
type Config struct {
	// WatchedTagKeys are the security-sensitive tag keys. An empty list
	// is valid and means no event ever matches.
	WatchedTagKeys []string

	// CompanyName labels emitted findings.
	CompanyName string

	// CrossAccountRole is the IAM role name assumed in the bucket's
	// account to verify its current state.
	CrossAccountRole string

	// LogLevel is the zerolog level name.
	LogLevel string

	// HandleTimeout bounds the wall time of one invocation.
	HandleTimeout time.Duration

	// TelemetryDisabled turns off trace and metric export.
	TelemetryDisabled bool

	// OTELEndpoint overrides the OTLP collector endpoint.
	OTELEndpoint string

	// OTELInsecure uses plaintext gRPC to the collector, for localhost
	// sidecars.
	OTELInsecure bool
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		WatchedTagKeys:    splitTagKeys(os.Getenv(EnvTags)),
		CompanyName:       os.Getenv(EnvCompanyName),
		CrossAccountRole:  os.Getenv(EnvCrossAccountRole),
		LogLevel:          os.Getenv(EnvLogLevel),
		TelemetryDisabled: os.Getenv(EnvTelemetryDisabled) == "true",
		OTELEndpoint:      os.Getenv(EnvOTELEndpoint),
		OTELInsecure:      os.Getenv(EnvOTELInsecure) == "true",
	}

	applyDefaults(cfg)

	if err := parseHandleTimeout(cfg, os.Getenv(EnvHandleTimeout)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func parseHandleTimeout(cfg *Config, raw string) error {
	if raw == "" {
		cfg.HandleTimeout = 50 * time.Second
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", EnvHandleTimeout, raw, err)
	}
	cfg.HandleTimeout = d
	return nil
}

// splitTagKeys parses the comma-separated watch-list. Whitespace around
// keys is trimmed and empty entries are dropped, so an unset or blank
// TAGS yields an empty watch-list rather than an error.
func splitTagKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		key := strings.TrimSpace(part)
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Validate checks the configuration is usable. An empty watch-list is
// allowed; the handler treats it as "nothing configured" and emits no
// findings.
func (c *Config) Validate() error {
	if c.CompanyName == "" {
		return fmt.Errorf("config: %s is required", EnvCompanyName)
	}
	if c.CrossAccountRole == "" {
		return fmt.Errorf("config: %s is required", EnvCrossAccountRole)
	}
	if c.HandleTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive (got %v)", EnvHandleTimeout, c.HandleTimeout)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown %s %q", EnvLogLevel, c.LogLevel)
	}
	return nil
}
