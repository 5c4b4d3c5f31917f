// Package logging builds the process logger.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, the console gets everything on stderr and the
// file gets the same records as JSON.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. Unknown names are info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// levelFilter forwards only the records pass accepts.
type levelFilter struct {
	pass func(zerolog.Level) bool
	w    io.Writer
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if !f.pass(l) {
		return len(p), nil
	}
	return f.w.Write(p)
}

func console(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
}

// Setup builds a logger with console and optional file output. The returned
// closers must be closed on exit.
func Setup(level, file string) (*zerolog.Logger, []io.Closer, error) {
	var writers []io.Writer
	var closers []io.Closer

	if file == "" {
		writers = append(writers,
			levelFilter{pass: func(l zerolog.Level) bool { return l < zerolog.ErrorLevel }, w: console(os.Stdout)},
			levelFilter{pass: func(l zerolog.Level) bool { return l >= zerolog.ErrorLevel }, w: console(os.Stderr)},
		)
	} else {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, f)
		writers = append(writers, console(os.Stderr), f)
	}

	logger := New(zerolog.MultiLevelWriter(writers...), level)
	return &logger, closers, nil
}

// New returns a timestamped logger writing to w at the named level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Sub returns a child logger tagged with a subsystem name.
func Sub(l *zerolog.Logger, subsystem string) *zerolog.Logger {
	sub := l.With().Str("subsystem", subsystem).Logger()
	return &sub
}
