package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"apiscan/internal/paths"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// EnvPrefix namespaces environment overrides, e.g. APISCAN_GENERATE_VERSION.
const EnvPrefix = "APISCAN"

// Config represents the complete apiscan configuration
type Config struct {
	Version     int    `json:"version" mapstructure:"version"`
	ModulesFile string `json:"modulesFile" mapstructure:"modulesFile"`

	Generate GenerateConfig `json:"generate" mapstructure:"generate"`
	History  HistoryConfig  `json:"history" mapstructure:"history"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// GenerateConfig overrides the aggregation target. Empty values fall back to
// what the module graph derives (api-<project>, the project version,
// <buildDir>/api).
type GenerateConfig struct {
	BaseName  string `json:"baseName" mapstructure:"baseName"`
	Version   string `json:"version" mapstructure:"version"`
	OutputDir string `json:"outputDir" mapstructure:"outputDir"`
}

// HistoryConfig controls the run history database
type HistoryConfig struct {
	Enabled       bool `json:"enabled" mapstructure:"enabled"`
	KeepArtifacts bool `json:"keepArtifacts" mapstructure:"keepArtifacts"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	// File enables an additional log file under .apiscan/logs.
	File bool `json:"file" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentVersion,
		ModulesFile: "MODULES.toml",
		History: HistoryConfig{
			Enabled:       true,
			KeepArtifacts: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// setDefaults registers every key so that environment overrides are seen by
// Unmarshal even when the config file omits them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("modulesFile", d.ModulesFile)
	v.SetDefault("generate.baseName", d.Generate.BaseName)
	v.SetDefault("generate.version", d.Generate.Version)
	v.SetDefault("generate.outputDir", d.Generate.OutputDir)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.keepArtifacts", d.History.KeepArtifacts)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// LoadConfig loads configuration from .apiscan/config.json, layering
// APISCAN_* environment variables on top. A missing file yields defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.GetStateDir(repoRoot))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "", Message: "failed to read config", Cause: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "", Message: "failed to decode config", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .apiscan/config.json
func (c *Config) Save(repoRoot string) error {
	if _, err := paths.EnsureStateDir(repoRoot); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(paths.GetConfigPath(repoRoot), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.ModulesFile == "" {
		return &ConfigError{Field: "modulesFile", Message: "must not be empty"}
	}
	if filepath.IsAbs(c.ModulesFile) {
		return &ConfigError{Field: "modulesFile", Message: "must be relative to the repository root"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	if strings.ContainsAny(c.Generate.BaseName, `/\`) {
		return &ConfigError{Field: "generate.baseName", Message: "must be a file name, not a path"}
	}
	if strings.ContainsAny(c.Generate.Version, `/\`) {
		return &ConfigError{Field: "generate.version", Message: "must not contain path separators"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Field != "" {
		msg += " in field '" + e.Field + "'"
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
