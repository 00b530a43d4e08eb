package util

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"sync"

	"github.com/percona/vertica-replicate/errors"
)

// Command is an external program invocation.
type Command struct {
	Path string
	Args []string
}

func (c Command) String() string {
	return Shelljoin(append([]string{c.Path}, c.Args...))
}

// Result holds what a finished process produced.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Combined is stdout and stderr interleaved in arrival order.
	Combined []byte
}

// Runner starts a process and waits for it.
//
// Run returns an error only when the process could not be started or waited
// for. A process that ran and exited non-zero is reported through
// [Result.ExitCode] with a nil error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError reports that a process ran and exited with a non-zero status.
type ExitError struct {
	Code int
	// Output is the diagnostic text normalized to a single line.
	Output string
}

func (e *ExitError) Error() string {
	msg := "exit status " + strconv.Itoa(e.Code)
	if e.Output != "" {
		msg += ": " + e.Output
	}

	return msg
}

// ExecRunner runs processes with [os/exec].
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	var stdout, stderr bytes.Buffer

	combined := &lockedBuffer{}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdout = &teeWriter{own: &stdout, combined: combined}
	cmd.Stderr = &teeWriter{own: &stderr, combined: combined}

	err := cmd.Start()
	if err != nil {
		return nil, errors.Wrapf(err, "start %s", c.Path)
	}

	err = cmd.Wait()

	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Combined: combined.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrapf(err, "wait %s", c.Path)
		}

		res.ExitCode = exitErr.ExitCode()
	}

	return res, nil
}

// lockedBuffer is shared by the stdout and stderr copiers of one process.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p) //nolint:wrapcheck
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.buf.Bytes())
}

type teeWriter struct {
	own      *bytes.Buffer
	combined *lockedBuffer
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.own.Write(p)

	return w.combined.Write(p)
}
