package config_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/percona/vertica-replicate/config"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "vreplicate"}
	config.AddPersistentFlags(cmd)
	config.AddRunFlags(cmd)

	require.NoError(t, cmd.ParseFlags(args))

	return cmd
}

func TestLoadDefaults(t *testing.T) {
	cmd := newCmd(t, "-c", "replicate_db.ini", "-a")

	cfg, err := config.Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "replicate_db.ini", cfg.ConfigFile)
	assert.True(t, cfg.AllSchemas)
	assert.Empty(t, cfg.Include)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, zerolog.InfoLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultVSQLPath, cfg.VSQL.Path)
	assert.Equal(t, config.DefaultVBRPath, cfg.VBR.Path)
	assert.Equal(t, config.DefaultVBRTask, cfg.VBR.Task)

	require.NoError(t, config.Validate(cfg))
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("VREPLICATE_EXCLUDE", "sales.tmp_table")
	t.Setenv("VREPLICATE_LOG_LEVEL", "debug")
	t.Setenv("VREPLICATE_VSQL_ARGS", "-U dbadmin -h 'db host'")

	cmd := newCmd(t, "--config-file", "db.ini", "-i", "store.store_sales_fact", "--dry-run")

	cfg, err := config.Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "store.store_sales_fact", cfg.Include)
	assert.Equal(t, "sales.tmp_table", cfg.Exclude)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, zerolog.DebugLevel, cfg.Log.Level)

	args, err := cfg.VSQL.VSQLArgs()
	require.NoError(t, err)
	assert.Equal(t, []string{"-U", "dbadmin", "-h", "db host"}, args)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	cmd := newCmd(t, "-c", "db.ini", "--log-level", "loud")

	_, err := config.Load(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal config")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *config.Config {
		return &config.Config{
			ConfigFile: "db.ini",
			VSQL:       config.VSQLConfig{Path: config.DefaultVSQLPath},
			VBR:        config.VBRConfig{Path: config.DefaultVBRPath, Task: config.DefaultVBRTask},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*config.Config) {},
		},
		{
			name:    "config file missing",
			mutate:  func(c *config.Config) { c.ConfigFile = "" },
			wantErr: "config-file: is required",
		},
		{
			name:    "vbr path missing",
			mutate:  func(c *config.Config) { c.VBR.Path = "" },
			wantErr: "vbr-path: is required",
		},
		{
			name:    "unterminated quote in vsql args",
			mutate:  func(c *config.Config) { c.VSQL.Args = "-w 'secret" },
			wantErr: "vsql-args: must be valid shell words",
		},
		{
			name:   "output limit",
			mutate: func(c *config.Config) { c.Log.OutputLimit = "4KiB" },
		},
		{
			name:    "output limit not a size",
			mutate:  func(c *config.Config) { c.Log.OutputLimit = "lots" },
			wantErr: "log-output-limit: must be a valid byte size",
		},
		{
			name:    "output limit too large",
			mutate:  func(c *config.Config) { c.Log.OutputLimit = "1GiB" },
			wantErr: "log-output-limit: must be at most 64MiB",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := config.Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestOutputLimitBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, (&config.LogConfig{}).OutputLimitBytes())
	assert.Equal(t, 4096, (&config.LogConfig{OutputLimit: "4KiB"}).OutputLimitBytes())
	assert.Equal(t, 1000, (&config.LogConfig{OutputLimit: "1kB"}).OutputLimitBytes())
}
