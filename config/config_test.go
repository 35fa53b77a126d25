package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvTags, "soar:s3:request-publicly-readable,soar:s3:request-publicly-writable")
	t.Setenv(EnvCompanyName, "ExampleCorp")
	t.Setenv(EnvCrossAccountRole, "SecOpsCrossAccountRole")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvHandleTimeout, "")
	t.Setenv(EnvTelemetryDisabled, "")
	t.Setenv(EnvOTELEndpoint, "")
	t.Setenv(EnvOTELInsecure, "")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"soar:s3:request-publicly-readable",
		"soar:s3:request-publicly-writable",
	}, cfg.WatchedTagKeys)
	assert.Equal(t, "ExampleCorp", cfg.CompanyName)
	assert.Equal(t, "SecOpsCrossAccountRole", cfg.CrossAccountRole)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50*time.Second, cfg.HandleTimeout)
	assert.False(t, cfg.TelemetryDisabled)
}

func TestLoadTagsParsing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", "a,b", []string{"a", "b"}},
		{"spaces trimmed", " a , b ", []string{"a", "b"}},
		{"empty entries dropped", "a,,b,", []string{"a", "b"}},
		{"unset is a valid empty watch-list", "", nil},
		{"only separators", ", ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(EnvTags, tt.raw)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.WatchedTagKeys)
		})
	}
}

func TestLoadMissingCompanyName(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvCompanyName, "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvCompanyName)
}

func TestLoadMissingCrossAccountRole(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvCrossAccountRole, "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvCrossAccountRole)
}

func TestLoadHandleTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvHandleTimeout, "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.HandleTimeout)
}

func TestLoadHandleTimeoutInvalid(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvHandleTimeout, "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLogLevelInvalid(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvLogLevel, "loud")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadTelemetryDisabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvTelemetryDisabled, "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TelemetryDisabled)
}

func TestLoadOTELInsecure(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvOTELInsecure, "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.OTELInsecure)
}

func TestValidateNegativeTimeout(t *testing.T) {
	cfg := &Config{
		CompanyName:      "ExampleCorp",
		CrossAccountRole: "SecOpsCrossAccountRole",
		LogLevel:         "info",
		HandleTimeout:    -time.Second,
	}
	require.Error(t, cfg.Validate())
}
