package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricNamespace = "vertica_replicate"

// Run metrics.
var (
	//nolint:gochecknoglobals
	runDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run in seconds.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	runTimestampSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	runOutcome = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:      "run_outcome",
		Help:      "1 for the outcome of the last run, 0 for the others.",
		Namespace: metricNamespace,
	}, []string{"outcome"})
)

// Scope metrics.
var (
	//nolint:gochecknoglobals
	discoveredSchemas = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "discovered_schemas",
		Help:      "Number of schemas returned by discovery.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	scopeObjects = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:      "scope_objects",
		Help:      "Number of identifiers in the written object lists.",
		Namespace: metricNamespace,
	}, []string{"list"})
)

// Replication tool metrics.
var (
	//nolint:gochecknoglobals
	replExitCode = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "repl_exit_code",
		Help:      "Exit status of the last vbr run.",
		Namespace: metricNamespace,
	})

	//nolint:gochecknoglobals
	replDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "repl_duration_seconds",
		Help:      "Duration of the last vbr run in seconds.",
		Namespace: metricNamespace,
	})
)

// Outcome labels. Every label is always exported so a changed outcome resets the previous one.
var outcomes = []string{ //nolint:gochecknoglobals
	"success",
	"tool_failure",
	"invocation_failure",
	"discovery_failure",
	"config_failure",
	"invalid_request",
	"dry_run",
}

// Init registers the metrics.
func Init(reg prometheus.Registerer) {
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: metricNamespace,
	}))

	reg.MustRegister(
		runDurationSeconds,
		runTimestampSeconds,
		runOutcome,

		discoveredSchemas,
		scopeObjects,

		replExitCode,
		replDurationSeconds,
	)
}

// SetRunOutcome marks outcome as the result of the run and records its duration.
func SetRunOutcome(outcome string, dur time.Duration) {
	for _, o := range outcomes {
		v := 0.0
		if o == outcome {
			v = 1
		}

		runOutcome.WithLabelValues(o).Set(v)
	}

	runDurationSeconds.Set(dur.Seconds())
	runTimestampSeconds.SetToCurrentTime()
}

// SetDiscoveredSchemas sets the number of discovered schemas.
func SetDiscoveredSchemas(n int) {
	discoveredSchemas.Set(float64(n))
}

// SetScopeObjects sets the identifier counts of the include and exclude lists.
func SetScopeObjects(include, exclude int) {
	scopeObjects.WithLabelValues("include").Set(float64(include))
	scopeObjects.WithLabelValues("exclude").Set(float64(exclude))
}

// SetReplResult records the vbr exit status and run time.
func SetReplResult(exitCode int, dur time.Duration) {
	replExitCode.Set(float64(exitCode))
	replDurationSeconds.Set(dur.Seconds())
}

// WriteTextfile writes the metrics gathered by g to path in the Prometheus text format.
// The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g) //nolint:wrapcheck
}
