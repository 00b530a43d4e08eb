// Package repl runs the vbr replication task and classifies how it ended.
package repl

import (
	"context"

	"github.com/percona/vertica-replicate/errors"
	"github.com/percona/vertica-replicate/log"
	"github.com/percona/vertica-replicate/util"
)

// Kind is the class of an [Outcome].
type Kind int

const (
	// Success means vbr exited with status 0.
	Success Kind = iota
	// ToolFailure means vbr ran and exited non-zero.
	ToolFailure
	// InvocationFailure means vbr could not be started.
	InvocationFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ToolFailure:
		return "tool_failure"
	case InvocationFailure:
		return "invocation_failure"
	}

	return "unknown"
}

// Outcome is the terminal result of one replication run.
type Outcome struct {
	Kind Kind

	// ExitCode and Diagnostic are set for ToolFailure. Diagnostic is the
	// combined vbr output on a single line.
	ExitCode   int
	Diagnostic string

	// Cause is set for InvocationFailure.
	Cause error
}

// Err returns the outcome as an error, nil on Success.
func (o Outcome) Err() error {
	switch o.Kind {
	case Success:
		return nil
	case ToolFailure:
		return errors.Wrap(&util.ExitError{Code: o.ExitCode, Output: o.Diagnostic}, "vbr")
	case InvocationFailure:
		return errors.Classify(errors.Wrap(o.Cause, "vbr"), errors.ErrInvocation)
	}

	return errors.Errorf("unknown outcome %d", o.Kind)
}

// Invoker runs vbr against a configuration file.
type Invoker struct {
	Runner util.Runner
	Path   string
	Task   string
	// Args are extra vbr arguments placed after the task and config flags.
	Args []string
}

// Command returns the vbr invocation for the configuration file at path.
func (inv *Invoker) Command(path string) util.Command {
	args := make([]string, 0, len(inv.Args)+4)
	args = append(args, "-t", inv.Task, "-c", path)
	args = append(args, inv.Args...)

	return util.Command{Path: inv.Path, Args: args}
}

// Invoke runs vbr once and waits for it. It never retries.
func (inv *Invoker) Invoke(ctx context.Context, path string) Outcome {
	cmd := inv.Command(path)

	log.Ctx(ctx).With(log.Scope("repl")).Debug("Running " + cmd.String())

	res, err := inv.Runner.Run(ctx, cmd)
	if err != nil {
		return Outcome{Kind: InvocationFailure, Cause: err}
	}

	if res.ExitCode != 0 {
		return Outcome{
			Kind:       ToolFailure,
			ExitCode:   res.ExitCode,
			Diagnostic: util.Oneline(string(res.Combined)),
		}
	}

	return Outcome{Kind: Success}
}
