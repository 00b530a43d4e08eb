package config

import (
	"github.com/spf13/cobra"
)

// AddPersistentFlags registers the flags shared by every command.
func AddPersistentFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()

	pf.StringP("config-file", "c", "", "vbr configuration file (e.g. replicate_db.ini)")

	pf.String("log-level", "info", "Log level")
	pf.Bool("log-json", false, "Output log in JSON format")
	pf.Bool("log-no-color", false, "Disable log color")
	pf.String("log-output-limit", "", "Max size of tool output attached to log records (e.g. 4KiB)")
}

// AddRunFlags registers the flags of the replication run.
func AddRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.BoolP("all-schemas", "a", false,
		"Start with all non-system schemas for includeObjects, then apply --include and --exclude. "+
			"A table may still be listed with --include when its schema is excluded "+
			"(e.g. exclude store, include store.store_sales_fact)")
	f.StringP("include", "i", "",
		"Objects to include, overriding the config file (optional with --all-schemas)")
	f.StringP("exclude", "x", "",
		"Objects to exclude, overriding the config file")

	f.Bool("dry-run", false, "Write the config file but do not run vbr")
	f.String("metrics-textfile", "", "Write run metrics to this file in Prometheus text format")

	f.String("vsql-path", DefaultVSQLPath, "Path to vsql")
	f.String("vsql-args", "", "Extra vsql arguments (e.g. \"-U dbadmin -h host\")")
	f.String("vbr-path", DefaultVBRPath, "Path to vbr")
	f.String("vbr-task", DefaultVBRTask, "vbr task")
	f.MarkHidden("vbr-task") //nolint:errcheck
	f.String("vbr-args", "", "Extra vbr arguments")
}
