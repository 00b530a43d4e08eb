// Package config provides configuration management for vreplicate using Viper.
package config

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/util"
	"github.com/percona/vertica-replicate/validate"
)

// EnvPrefix prefixes the environment variable of every flag.
const EnvPrefix = "VREPLICATE"

// Config holds all vreplicate configuration.
type Config struct {
	// ConfigFile is the vbr configuration file that receives the scope.
	ConfigFile string `mapstructure:"config-file" validate:"required"`

	AllSchemas bool   `mapstructure:"all-schemas"`
	Include    string `mapstructure:"include"`
	Exclude    string `mapstructure:"exclude"`

	// DryRun writes the configuration file but does not run vbr.
	DryRun bool `mapstructure:"dry-run"`

	// MetricsTextfile, when set, receives the run metrics in the Prometheus
	// text format (node_exporter textfile collector).
	MetricsTextfile string `mapstructure:"metrics-textfile"`

	Log LogConfig `mapstructure:",squash"`

	VSQL VSQLConfig `mapstructure:",squash"`

	VBR VBRConfig `mapstructure:",squash"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   zerolog.Level `mapstructure:"log-level"`
	JSON    bool          `mapstructure:"log-json"`
	NoColor bool          `mapstructure:"log-no-color"`
	// OutputLimit caps process output attached to log records (e.g. "4KiB").
	// Empty or "0" means no limit.
	OutputLimit string `mapstructure:"log-output-limit" validate:"bytesize,bytesizemax=64MiB"`
}

// VSQLConfig holds the schema discovery client configuration.
type VSQLConfig struct {
	Path string `mapstructure:"vsql-path" validate:"required"`
	// Args are extra vsql arguments (connection options), split with shell rules.
	Args string `mapstructure:"vsql-args" validate:"shellwords"`
}

// VBRConfig holds the replication tool configuration.
type VBRConfig struct {
	Path string `mapstructure:"vbr-path" validate:"required"`
	Task string `mapstructure:"vbr-task" validate:"required"`
	// Args are extra vbr arguments, split with shell rules.
	Args string `mapstructure:"vbr-args" validate:"shellwords"`
}

// Load binds the command flags and environment variables and returns the decoded Config.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cmd.PersistentFlags() != nil {
		_ = v.BindPFlags(cmd.PersistentFlags())
	}

	if cmd.Flags() != nil {
		_ = v.BindPFlags(cmd.Flags())
	}

	var cfg Config

	// log-level decodes through zerolog.Level.UnmarshalText
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc()))
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if cfg.Log.Level == zerolog.NoLevel {
		cfg.Log.Level = zerolog.InfoLevel
	}

	return &cfg, nil
}

// Validate checks the Config for required fields and value formats.
func Validate(cfg *Config) error {
	return validate.Struct(cfg) //nolint:wrapcheck
}

// OutputLimitBytes returns the log output limit in bytes, 0 for no limit.
func (c *LogConfig) OutputLimitBytes() int {
	if c.OutputLimit == "" {
		return 0
	}

	n, err := humanize.ParseBytes(c.OutputLimit)
	if err != nil {
		return 0
	}

	return int(min(n, MaxOutputLimitBytes))
}

// VSQLArgs returns the extra vsql arguments as words.
func (c *VSQLConfig) VSQLArgs() ([]string, error) {
	args, err := util.Shellsplit(c.Args)

	return args, errors.Wrap(err, "vsql-args")
}

// VBRArgs returns the extra vbr arguments as words.
func (c *VBRConfig) VBRArgs() ([]string, error) {
	args, err := util.Shellsplit(c.Args)

	return args, errors.Wrap(err, "vbr-args")
}
