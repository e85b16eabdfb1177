// Package config loads issuetrack configuration from defaults, an optional
// YAML file and ISSUETRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers        = errors.New("tracking workers must not be negative")
	ErrInvalidScmProvider    = errors.New("unknown scm provider")
	ErrInvalidChangedLines   = errors.New("unknown changed lines provider")
	ErrMissingTargetRef      = errors.New("git changed lines need a target ref")
	ErrInvalidLogLevel       = errors.New("unknown log level")
	ErrInvalidSampleRatio    = errors.New("sample ratio must be within [0, 1]")
	ErrConfigFileNotReadable = errors.New("config file not readable")
)

const (
	envPrefix      = "ISSUETRACK"
	configFileName = ".issuetrack"
)

// Config holds all configuration for issuetrack.
type Config struct {
	Tracking      TrackingConfig      `mapstructure:"tracking"`
	Scm           ScmConfig           `mapstructure:"scm"`
	ChangedLines  ChangedLinesConfig  `mapstructure:"changed_lines"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// TrackingConfig tunes the matching engine.
type TrackingConfig struct {
	// Workers bounds the per-file tracking pool; 0 uses GOMAXPROCS.
	Workers         int  `mapstructure:"workers"`
	DetectCodeMoves bool `mapstructure:"detect_code_moves"`
	TrackClosed     bool `mapstructure:"track_closed"`
}

// ScmConfig selects where line attribution comes from.
type ScmConfig struct {
	Provider   string `mapstructure:"provider"`
	Repository string `mapstructure:"repository"`
}

// ChangedLinesConfig selects where pull request changed lines come from.
type ChangedLinesConfig struct {
	Provider  string `mapstructure:"provider"`
	TargetRef string `mapstructure:"target_ref"`
	// ScmFallback derives new lines from changesets dated after the base
	// analysis when the provider has no data for a file.
	ScmFallback bool `mapstructure:"scm_fallback"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ObservabilityConfig holds telemetry export configuration.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// LoadConfig loads configuration. An explicit configPath must exist;
// otherwise .issuetrack.yaml is looked up in the working directory and
// then in $HOME, and is optional.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configFileName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("%w: %w", ErrConfigFileNotReadable, readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("tracking.workers", DefaultTrackingWorkers)
	viperCfg.SetDefault("tracking.detect_code_moves", DefaultTrackingDetectCodeMoves)
	viperCfg.SetDefault("tracking.track_closed", DefaultTrackingTrackClosed)

	viperCfg.SetDefault("scm.provider", DefaultScmProvider)
	viperCfg.SetDefault("scm.repository", DefaultScmRepository)

	viperCfg.SetDefault("changed_lines.provider", DefaultChangedLinesProvider)
	viperCfg.SetDefault("changed_lines.target_ref", DefaultChangedLinesTarget)
	viperCfg.SetDefault("changed_lines.scm_fallback", DefaultChangedLinesScmFallback)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", DefaultObservabilityOTLPInsecure)
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.metrics_addr", "")
	viperCfg.SetDefault("observability.environment", DefaultObservabilityEnvironment)
	viperCfg.SetDefault("observability.sample_ratio", DefaultObservabilitySampleRatio)
}

// Validate checks value ranges and provider names.
func (c *Config) Validate() error {
	if c.Tracking.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Tracking.Workers)
	}

	if !slices.Contains([]string{ProviderReport, ProviderGit}, c.Scm.Provider) {
		return fmt.Errorf("%w: %q", ErrInvalidScmProvider, c.Scm.Provider)
	}

	if !slices.Contains([]string{ProviderReport, ProviderGit, ProviderText}, c.ChangedLines.Provider) {
		return fmt.Errorf("%w: %q", ErrInvalidChangedLines, c.ChangedLines.Provider)
	}

	if c.ChangedLines.Provider == ProviderGit && c.ChangedLines.TargetRef == "" {
		return ErrMissingTargetRef
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}
