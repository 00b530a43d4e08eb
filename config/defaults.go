package config

import "github.com/dustin/go-humanize"

// Default locations of the Vertica client tools.
const (
	DefaultVSQLPath = "/opt/vertica/bin/vsql"
	DefaultVBRPath  = "/opt/vertica/bin/vbr"
	DefaultVBRTask  = "replicate"
)

// MaxOutputLimitBytes bounds --log-output-limit.
const MaxOutputLimitBytes = 64 * humanize.MiByte
