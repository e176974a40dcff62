package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
)

func TestNewValidationConfigDefaults(t *testing.T) {
	cfg := NewValidationConfig()

	assert.Equal(t, 1, cfg.Threads)
	assert.Equal(t, 100, cfg.MaxSamplesPerCode)
	assert.NotNil(t, cfg.SeverityOverrides)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ValidationConfig)
	}{
		{"zero threads", func(c *ValidationConfig) { c.Threads = 0 }},
		{"negative samples", func(c *ValidationConfig) { c.MaxSamplesPerCode = -1 }},
		{"bad country", func(c *ValidationConfig) { c.CountryCode = "not-a-country" }},
		{"bad date", func(c *ValidationConfig) { c.ValidationDate = "20240101" }},
		{"bad severity", func(c *ValidationConfig) { c.SeverityOverrides["unused_shape"] = "FATAL" }},
		{"bad sample rate", func(c *ValidationConfig) { c.Observability.TracingSampleRate = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewValidationConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestDateFallsBackToNow(t *testing.T) {
	cfg := NewValidationConfig()
	now := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), cfg.Date(now))

	cfg.ValidationDate = "2023-12-31"
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), cfg.Date(now))
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validator.yaml")
	content := `
threads: 4
country_code: ${TEST_GTFS_COUNTRY}
severity_overrides:
  unused_shape: ERROR
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TEST_GTFS_COUNTRY", "CH")
	t.Setenv("GTFS_MAX_SAMPLES_PER_CODE", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, "CH", cfg.CountryCode)
	assert.Equal(t, 7, cfg.MaxSamplesPerCode)
	assert.Equal(t, "ERROR", cfg.SeverityOverrides["unused_shape"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewValidationConfig().Threads, cfg.Threads)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := NewValidationConfig()
	cfg.Threads = 3
	cfg.ValidationDate = "2024-06-01"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Threads)
	assert.Equal(t, "2024-06-01", loaded.ValidationDate)
}
