// Package logging configures the zerolog logger shared by every parkdash
// component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options select where and how log lines are written.
type Options struct {
	// Path sends logs to a file (appending). The terminal dashboard uses this
	// so log lines never land on the screen it owns.
	Path string
	// Writer is used when Path is empty; nil means stderr.
	Writer io.Writer
	Level  string
	JSON   bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger for opts. The returned closer releases the log file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	toFile := strings.TrimSpace(opts.Path) != ""

	switch {
	case toFile:
		f, err := OpenFile(opts.Path)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		out, closer = f, f
	case opts.Writer != nil:
		out = opts.Writer
	}

	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: toFile}
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(opts.Level))
	return logger, closer, nil
}

// Setup builds a logger and installs it as the global log.Logger.
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return closer, err
	}
	log.Logger = logger
	return closer, nil
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
