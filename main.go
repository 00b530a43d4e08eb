package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/percona/vertica-replicate/config"
	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/job"
	"github.com/percona/vertica-replicate/log"
	"github.com/percona/vertica-replicate/metrics"
	"github.com/percona/vertica-replicate/repl"
	"github.com/percona/vertica-replicate/sel"
	"github.com/percona/vertica-replicate/topo"
	"github.com/percona/vertica-replicate/util"
	"github.com/percona/vertica-replicate/vbrconf"
)

// contextKey is a type for context keys used in this package.
type contextKey string

// configContextKey is the context key for storing *config.Config.
const configContextKey contextKey = "config"

var (
	Version   = "v0.1.0" //nolint:gochecknoglobals
	Platform  = ""       //nolint:gochecknoglobals
	GitCommit = ""       //nolint:gochecknoglobals
	GitBranch = ""       //nolint:gochecknoglobals
	BuildTime = ""       //nolint:gochecknoglobals
)

func buildVersion() string {
	return Version + " " + GitCommit + " " + BuildTime
}

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "vreplicate",
	Short: "Replicate Vertica schemas and objects with vbr",
	Long: "Writes includeObjects/excludeObjects into the [Misc] section of a vbr " +
		"configuration file, then runs vbr -t replicate with it.",
	Example: "  vreplicate -c replicate_db.ini -a -x store\n" +
		"  vreplicate -c replicate_db.ini -i store.store_sales_fact,public",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return errors.Wrap(err, "load config")
		}

		lg := log.InitGlobals(cfg.Log.Level, cfg.Log.JSON, cfg.Log.NoColor)
		ctx := lg.WithContext(cmd.Context())
		ctx = context.WithValue(ctx, configContextKey, cfg)
		cmd.SetContext(ctx)

		return nil
	},

	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := cmd.Context().Value(configContextKey).(*config.Config) //nolint:forcetypeassert

		err := config.Validate(cfg)
		if err != nil {
			return errors.Wrap(err, "validate options")
		}

		req := sel.Request{
			AllSchemas: cfg.AllSchemas,
			Include:    cfg.Include,
			Exclude:    cfg.Exclude,
		}

		err = req.Validate()
		if err != nil {
			_ = cmd.Usage()

			return errors.New("must specify all schemas with --all-schemas " +
				"or individual objects with --include")
		}

		log.Ctx(cmd.Context()).Debug("vreplicate " + buildVersion())

		return runJob(cmd.Context(), cfg, req)
	},
}

//nolint:gochecknoglobals
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		info := fmt.Sprintf("Version:   %s\nPlatform:  %s\nGitCommit: "+
			"%s\nGitBranch: %s\nBuildTime: %s\nGoVersion: %s",
			Version,
			Platform,
			GitCommit,
			GitBranch,
			BuildTime,
			runtime.Version(),
		)

		cmd.Println(info)
	},
}

//nolint:gochecknoglobals
var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Print the object scope stored in the config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := cmd.Context().Value(configContextKey).(*config.Config) //nolint:forcetypeassert

		if cfg.ConfigFile == "" {
			return errors.New("required flag --config-file not set")
		}

		stored, err := vbrconf.Read(cfg.ConfigFile)
		if err != nil {
			return errors.Wrap(err, "read config file")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "layout:         %s\n", stored.Layout)
		fmt.Fprintf(out, "%s: %s\n", vbrconf.IncludeObjectsKey, formatStored(stored.Include))
		fmt.Fprintf(out, "%s: %s\n", vbrconf.ExcludeObjectsKey, formatStored(stored.Exclude))

		return nil
	},
}

func formatStored(v *string) string {
	if v == nil {
		return "<absent>"
	}

	return fmt.Sprintf("%q", *v)
}

func main() {
	config.AddPersistentFlags(rootCmd)
	config.AddRunFlags(rootCmd)

	rootCmd.AddCommand(
		versionCmd,
		scopeCmd,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// runJob builds the collaborators from cfg and runs the replication.
func runJob(ctx context.Context, cfg *config.Config, req sel.Request) error {
	vsqlArgs, err := cfg.VSQL.VSQLArgs()
	if err != nil {
		return err
	}

	vbrArgs, err := cfg.VBR.VBRArgs()
	if err != nil {
		return err
	}

	runner := util.ExecRunner{}

	promRegistry := prometheus.NewRegistry()
	metrics.Init(promRegistry)

	j := &job.Job{
		Source: &topo.VSQL{
			Runner: runner,
			Path:   cfg.VSQL.Path,
			Args:   vsqlArgs,
		},
		Invoker: &repl.Invoker{
			Runner: runner,
			Path:   cfg.VBR.Path,
			Task:   cfg.VBR.Task,
			Args:   vbrArgs,
		},
		ConfigFile:  cfg.ConfigFile,
		DryRun:      cfg.DryRun,
		OutputLimit: cfg.Log.OutputLimitBytes(),
	}

	_, err = j.Run(ctx, req)

	if cfg.MetricsTextfile != "" {
		err1 := metrics.WriteTextfile(cfg.MetricsTextfile, promRegistry)
		if err1 != nil {
			log.Ctx(ctx).Warn("Write metrics textfile: " + err1.Error())
		}
	}

	return err
}
