// Package log wraps zerolog. The process logger is built once by [InitGlobals]
// and travels in a [context.Context]; components obtain it with [Ctx].
package log

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Attr adds a field to a logger context.
type Attr func(zerolog.Context) zerolog.Context

// Logger is a scoped logger.
type Logger struct {
	zl *zerolog.Logger
}

// InitGlobals sets the process-wide level and time format and returns the root
// logger writing to stderr. Call it once at startup.
func InitGlobals(level zerolog.Level, json, noColor bool) *zerolog.Logger {
	return initGlobals(os.Stderr, level, json, noColor)
}

func initGlobals(w io.Writer, level zerolog.Level, json, noColor bool) *zerolog.Logger {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	if !json {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    noColor,
			TimeFormat: "2006-01-02 15:04:05.000",
		}
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()

	return &l
}

// Ctx returns the logger carried by ctx. Without one, logging is discarded.
func Ctx(ctx context.Context) *Logger {
	return &Logger{zl: zerolog.Ctx(ctx)}
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.zl.WithContext(ctx)
}

// With returns a child logger with attrs attached.
func (l *Logger) With(attrs ...Attr) *Logger {
	c := l.zl.With()
	for _, attr := range attrs {
		c = attr(c)
	}

	zl := c.Logger()

	return &Logger{zl: &zl}
}

// Scope names the component that logs.
func Scope(name string) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("s", name)
	}
}

// Elapsed records a duration.
func Elapsed(d time.Duration) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Dur("elapsed", d)
	}
}

// ExitCode records the exit status of an external process.
func ExitCode(code int) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Int("exit_code", code)
	}
}

// Path records a file path.
func Path(p string) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("path", p)
	}
}

// Output records captured process output. It is expected on a single line.
func Output(text string) Attr {
	return func(c zerolog.Context) zerolog.Context {
		return c.Str("output", text)
	}
}

func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

// Error logs err at error level. err may be nil.
func (l *Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}
