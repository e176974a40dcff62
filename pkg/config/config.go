// Package config provides the run configuration for the validator.
//
// The configuration is organized into logical sections:
//   - Validation: thread count, country code, validation date, sample cap
//   - Severity overrides: per-code severity replacements
//   - Logging: zap level, encoding and outputs
//   - Observability: metrics and tracing switches
//
// Example usage:
//
//	cfg := config.NewValidationConfig()
//	cfg.Threads = 4
//	cfg.CountryCode = "US"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
)

// DateLayout is the layout of ValidationDate.
const DateLayout = "2006-01-02"

// DefaultMaxSamplesPerCode caps sample notices per code in the report.
const DefaultMaxSamplesPerCode = 100

// ValidationConfig is the single configuration structure for a validation run.
type ValidationConfig struct {
	// Threads bounds the number of concurrently running loaders and validators
	Threads int `yaml:"threads" json:"threads" mapstructure:"threads"`
	// CountryCode is the ISO 3166-1 alpha-2 region used to parse phone numbers
	CountryCode string `yaml:"country_code" json:"country_code" mapstructure:"country_code"`
	// ValidationDate is the "today" used by date-sensitive rules, empty means now
	ValidationDate string `yaml:"validation_date" json:"validation_date" mapstructure:"validation_date"`
	// MaxSamplesPerCode caps the sample notices kept per code in the report
	MaxSamplesPerCode int `yaml:"max_samples_per_code" json:"max_samples_per_code" mapstructure:"max_samples_per_code"`
	// SeverityOverrides replaces the severity of every notice with the given code
	SeverityOverrides map[string]string `yaml:"severity_overrides" json:"severity_overrides" mapstructure:"severity_overrides"`

	Logging       LoggingConfig       `yaml:"logging" json:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// LoggingConfig mirrors logger.Config in a serializable form.
type LoggingConfig struct {
	Level       string   `yaml:"level" json:"level" mapstructure:"level"`
	Encoding    string   `yaml:"encoding" json:"encoding" mapstructure:"encoding"`
	Development bool     `yaml:"development" json:"development" mapstructure:"development"`
	OutputPaths []string `yaml:"output_paths" json:"output_paths" mapstructure:"output_paths"`
}

// ObservabilityConfig contains metrics and tracing settings.
type ObservabilityConfig struct {
	// EnableMetrics registers and updates the Prometheus collectors
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics" mapstructure:"enable_metrics"`
	// EnableTracing exports spans for table loads and validator units
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// TracingSampleRate is the fraction of runs traced (0.0 to 1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" mapstructure:"tracing_sample_rate"`
	// MemoryStats logs process memory after loading and at the end of the run
	MemoryStats bool `yaml:"memory_stats" json:"memory_stats" mapstructure:"memory_stats"`
}

// NewValidationConfig creates a configuration with defaults.
// A single thread keeps notice order stable run to run.
func NewValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		Threads:           1,
		MaxSamplesPerCode: DefaultMaxSamplesPerCode,
		SeverityOverrides: make(map[string]string),
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "json",
			OutputPaths: []string{"stderr"},
		},
		Observability: ObservabilityConfig{
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 1.0,
			MemoryStats:       true,
		},
	}
}

// Validate validates the configuration for correctness.
// Returns an error of type config when a value is out of range.
func (c *ValidationConfig) Validate() error {
	if c.Threads <= 0 {
		return errors.New(errors.ErrorTypeConfig, "threads must be positive").WithDetail("threads", c.Threads)
	}
	if c.MaxSamplesPerCode < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_samples_per_code cannot be negative")
	}
	if c.CountryCode != "" {
		region, err := language.ParseRegion(c.CountryCode)
		if err != nil || !region.IsCountry() {
			return errors.Newf(errors.ErrorTypeConfig, "invalid country_code %q", c.CountryCode)
		}
	}
	if c.ValidationDate != "" {
		if _, err := time.Parse(DateLayout, c.ValidationDate); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "validation_date must be YYYY-MM-DD")
		}
	}
	for code, severity := range c.SeverityOverrides {
		switch strings.ToUpper(severity) {
		case "INFO", "WARNING", "ERROR":
		default:
			return errors.Newf(errors.ErrorTypeConfig, "severity override for %s: unknown severity %q", code, severity)
		}
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "tracing_sample_rate must be within [0, 1]")
	}
	return nil
}

// Date returns the validation date, or the calendar date of now when unset.
func (c *ValidationConfig) Date(now time.Time) time.Time {
	if c.ValidationDate != "" {
		if d, err := time.Parse(DateLayout, c.ValidationDate); err == nil {
			return d
		}
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Region returns the upper-cased country code.
func (c *ValidationConfig) Region() string {
	return strings.ToUpper(c.CountryCode)
}

// String renders a short description for log lines.
func (c *ValidationConfig) String() string {
	return fmt.Sprintf("threads=%d country=%q date=%q samples=%d overrides=%d",
		c.Threads, c.CountryCode, c.ValidationDate, c.MaxSamplesPerCode, len(c.SeverityOverrides))
}
