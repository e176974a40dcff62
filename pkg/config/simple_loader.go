package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/MobilityData/gtfs-validator-sub014/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. GTFS_THREADS.
const EnvPrefix = "GTFS"

// Load builds a configuration from defaults, an optional YAML file and
// GTFS_* environment variables, in increasing order of precedence.
// An empty filePath skips the file.
func Load(filePath string) (*ValidationConfig, error) {
	v := viper.New()
	setDefaults(v, NewValidationConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filePath != "" {
		data, err := os.ReadFile(filePath) //nolint:gosec // G304: path comes from the CLI flag
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(substituteEnvVars(string(data)))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
		}
	}

	cfg := NewValidationConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode configuration")
	}
	if cfg.SeverityOverrides == nil {
		cfg.SeverityOverrides = make(map[string]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves a configuration to a YAML file
func Save(filePath string, cfg *ValidationConfig) error {
	data, err := Dump(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeOutput, "failed to write config file")
	}

	return nil
}

// Dump renders the configuration as YAML.
func Dump(cfg *ValidationConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *ValidationConfig) {
	v.SetDefault("threads", cfg.Threads)
	v.SetDefault("country_code", cfg.CountryCode)
	v.SetDefault("validation_date", cfg.ValidationDate)
	v.SetDefault("max_samples_per_code", cfg.MaxSamplesPerCode)
	v.SetDefault("severity_overrides", cfg.SeverityOverrides)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.encoding", cfg.Logging.Encoding)
	v.SetDefault("logging.development", cfg.Logging.Development)
	v.SetDefault("logging.output_paths", cfg.Logging.OutputPaths)
	v.SetDefault("observability.enable_metrics", cfg.Observability.EnableMetrics)
	v.SetDefault("observability.enable_tracing", cfg.Observability.EnableTracing)
	v.SetDefault("observability.tracing_sample_rate", cfg.Observability.TracingSampleRate)
	v.SetDefault("observability.memory_stats", cfg.Observability.MemoryStats)
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		content = content[:start] + os.Getenv(varName) + content[end+1:]
	}
	return content
}
