// Package job runs one replication: resolve the scope, write it into the vbr
// configuration file, then run vbr.
package job

import (
	"context"
	"time"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/log"
	"github.com/percona/vertica-replicate/metrics"
	"github.com/percona/vertica-replicate/repl"
	"github.com/percona/vertica-replicate/sel"
	"github.com/percona/vertica-replicate/util"
	"github.com/percona/vertica-replicate/vbrconf"
)

// Invoker runs the replication tool against a configuration file.
type Invoker interface {
	Invoke(ctx context.Context, path string) repl.Outcome
}

// Job holds the collaborators of a run.
type Job struct {
	// Source lists schemas when a request selects all of them.
	Source sel.SchemaSource
	// Invoker runs vbr.
	Invoker Invoker
	// ConfigFile is the vbr configuration file receiving the scope.
	ConfigFile string
	// DryRun skips the vbr run.
	DryRun bool
	// OutputLimit caps tool output attached to log records. 0 means no limit.
	OutputLimit int
}

// Report describes a finished run.
type Report struct {
	Scope sel.Scope
	// Outcome is nil when vbr was not run.
	Outcome *repl.Outcome
	Elapsed time.Duration
}

// Run resolves req, applies it to the configuration file and runs vbr.
//
// An error is returned when the scope cannot be resolved, the configuration
// file cannot be read or written, or vbr cannot be started. A vbr run that
// fails is logged and reported through [Report.Outcome] with a nil error.
func (j *Job) Run(ctx context.Context, req sel.Request) (*Report, error) {
	startedAt := time.Now()
	lg := log.Ctx(ctx).With(log.Scope("job"), log.Path(j.ConfigFile))

	scope, err := sel.Resolve(ctx, req, j.countingSource())
	if err != nil {
		j.logResolveError(lg, err)
		metrics.SetRunOutcome(outcomeLabel(err), time.Since(startedAt))

		return nil, errors.Wrap(err, "resolve scope")
	}

	lg.Infof("Scope resolved: %s=%q %s=%q",
		vbrconf.IncludeObjectsKey, scope.Include,
		vbrconf.ExcludeObjectsKey, scope.Exclude)
	metrics.SetScopeObjects(len(sel.Split(scope.Include)), len(sel.Split(scope.Exclude)))

	err = vbrconf.Apply(ctx, j.ConfigFile, scope)
	if err != nil {
		lg.Error(err, "Update config file")
		metrics.SetRunOutcome("config_failure", time.Since(startedAt))

		return nil, errors.Wrap(err, "update config file")
	}

	lg.Info("Config file updated")

	report := &Report{Scope: scope}

	if j.DryRun {
		report.Elapsed = time.Since(startedAt)
		lg.Info("Dry run: vbr not started")
		metrics.SetRunOutcome("dry_run", report.Elapsed)

		return report, nil
	}

	lg.Info("Starting replication")

	replStartedAt := time.Now()
	outcome := j.Invoker.Invoke(ctx, j.ConfigFile)
	replElapsed := time.Since(replStartedAt)

	report.Outcome = &outcome
	report.Elapsed = time.Since(startedAt)
	metrics.SetRunOutcome(outcome.Kind.String(), report.Elapsed)

	switch outcome.Kind {
	case repl.Success:
		metrics.SetReplResult(0, replElapsed)
		lg.With(log.Elapsed(replElapsed)).Info("Replication completed")

	case repl.ToolFailure:
		metrics.SetReplResult(outcome.ExitCode, replElapsed)
		lg.With(
			log.Elapsed(replElapsed),
			log.ExitCode(outcome.ExitCode),
			log.Output(util.Truncate(outcome.Diagnostic, j.OutputLimit)),
		).Error(nil, "Replication failed")

	case repl.InvocationFailure:
		lg.Error(outcome.Cause, "Cannot start vbr")

		return report, outcome.Err()
	}

	return report, nil
}

// countingSource records the number of discovered schemas.
func (j *Job) countingSource() sel.SchemaSource {
	return sel.SchemaSourceFunc(func(ctx context.Context) ([]string, error) {
		schemas, err := j.Source.Schemas(ctx)
		if err == nil {
			metrics.SetDiscoveredSchemas(len(schemas))
		}

		return schemas, err //nolint:wrapcheck
	})
}

func (j *Job) logResolveError(lg *log.Logger, err error) {
	var discErr *sel.DiscoveryError
	if !errors.As(err, &discErr) {
		lg.Error(err, "Invalid request")

		return
	}

	attrs := []log.Attr{log.Output(util.Truncate(discErr.Diagnostic(), j.OutputLimit))}
	if code, ok := discErr.ExitCode(); ok {
		attrs = append(attrs, log.ExitCode(code))
	}

	lg.With(attrs...).Error(discErr.Cause, "Schema discovery failed")
}

func outcomeLabel(err error) string {
	if errors.Is(err, errors.ErrDiscovery) {
		return "discovery_failure"
	}

	return "invalid_request"
}
