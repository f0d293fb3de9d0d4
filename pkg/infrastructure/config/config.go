// Package config resolves application settings from flags, WORKFORCE_ environment
// variables, an optional config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. WORKFORCE_LOG_LEVEL
const EnvPrefix = "WORKFORCE"

// Setting keys. Flags bound through Load must use the same names.
const (
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyStrategy    = "strategy"
	KeyParallelism = "parallelism"
	KeyFormat      = "format"
	KeyOutputDir   = "output-dir"
	KeyReportFile  = "report-file"
	KeyDatabaseURL = "database-url"
	KeyMetricsFile = "metrics-file"
	KeyChart       = "chart"
)

// Config holds the resolved application settings
type Config struct {
	LogLevel    string `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
	LogFormat   string `mapstructure:"log-format" validate:"oneof=json console"`
	Strategy    string `mapstructure:"strategy" validate:"oneof=top-down bottom-up topdown bottomup"`
	Parallelism int    `mapstructure:"parallelism" validate:"gte=0"`
	Format      string `mapstructure:"format" validate:"oneof=text json yaml csv"`
	// OutputDir and ReportFile locate the persisted text report. An empty OutputDir
	// disables the file repository.
	OutputDir   string `mapstructure:"output-dir"`
	ReportFile  string `mapstructure:"report-file"`
	DatabaseURL string `mapstructure:"database-url"`
	MetricsFile string `mapstructure:"metrics-file"`
	// Chart is the path of an SVG staffing chart, empty for none
	Chart string `mapstructure:"chart"`
}

var validate = newValidator()

// newValidator reports fields by their setting key
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("mapstructure")
	})
	return v
}

// Default returns the settings used when nothing overrides them
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "console",
		Strategy:   "top-down",
		Format:     "text",
		OutputDir:  ".",
		ReportFile: "workforce_plan.txt",
	}
}

// SetDefaults registers the default value of every setting
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyStrategy, d.Strategy)
	v.SetDefault(KeyParallelism, d.Parallelism)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyOutputDir, d.OutputDir)
	v.SetDefault(KeyReportFile, d.ReportFile)
	v.SetDefault(KeyDatabaseURL, d.DatabaseURL)
	v.SetDefault(KeyMetricsFile, d.MetricsFile)
	v.SetDefault(KeyChart, d.Chart)
}

// Load resolves the settings. flags may be nil; configFile may be empty.
func Load(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			if fe.Tag() == "oneof" {
				return fmt.Errorf("invalid %s: %v (expected one of: %s)", fe.Field(), fe.Value(), fe.Param())
			}
			return fmt.Errorf("invalid %s: %v", fe.Field(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
