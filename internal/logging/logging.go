// Package logging builds the slog loggers shared by the harness and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meow-stack/gentest/internal/config"
)

// Options select how and where records are written.
type Options struct {
	Level  slog.Level
	Format config.LogFormat
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

var levels = map[config.LogLevel]slog.Level{
	config.LogLevelDebug: slog.LevelDebug,
	config.LogLevelInfo:  slog.LevelInfo,
	config.LogLevelWarn:  slog.LevelWarn,
	config.LogLevelError: slog.LevelError,
}

// New creates a logger from opts.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return slog.New(newHandler(opts.Format, w, opts.Level))
}

// NewFromConfig creates the CLI logger. Records go to stderr and are also
// appended to the configured log file, if any; the closer is nil without
// one. verbose forces debug level.
func NewFromConfig(cfg *config.Config, baseDir string, verbose bool) (*slog.Logger, io.Closer, error) {
	opts := Options{Level: parseLevel(cfg.Logging.Level), Format: cfg.Logging.Format}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	logPath := cfg.LogFile(baseDir)
	if logPath == "" {
		return New(opts), nil, nil
	}
	file, err := openAppend(logPath)
	if err != nil {
		return nil, nil, err
	}
	opts.Writer = io.MultiWriter(os.Stderr, file)
	return New(opts), file, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// Discard returns a logger that drops everything below error level and
// writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// OrSilent returns logger, or a discarding logger when it is nil.
func OrSilent(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// ForRun tags every record with the run id.
func ForRun(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String("run_id", runID))
}

// parseLevel maps a configured level, defaulting to info.
func parseLevel(level config.LogLevel) slog.Level {
	if l, ok := levels[level]; ok {
		return l
	}
	return slog.LevelInfo
}

func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
