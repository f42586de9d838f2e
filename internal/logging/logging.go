// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the logger's level, formatter and destination.
type Options struct {
	Level  string
	Format string
	// File, when set, routes output to a size-rotated file instead of stderr.
	File string
}

// New returns a charmbracelet logger and a closer for its output.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		}
		out = rotating
		closer = rotating
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          "ott-radar",
		Formatter:       formatter(opts.Format),
	})
	return logger, closer, nil
}

// Discard returns a logger that drops everything; used by tests and tools.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Standard adapts logger for APIs that want a *log.Logger from the standard library.
func Standard(logger *log.Logger, level log.Level) *stdlog.Logger {
	return logger.StandardLog(log.StandardLogOptions{ForceLevel: level})
}

func formatter(name string) log.Formatter {
	switch name {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
