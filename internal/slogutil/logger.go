package slogutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelSilent sits above every standard level and suppresses all output.
const LevelSilent = slog.Level(100)

// Console formats accepted by Options.Format.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

// NewLogger creates a logger with apiscan's line format.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a logger emitting one JSON object per record.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return NewLogger(io.Discard, LevelSilent)
}

// ParseLevel reads a configured level name (debug, info, warn/warning,
// error, case-insensitive). Anything else is info.
func ParseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Options describes the logger of one command invocation.
type Options struct {
	// Writer receives console output; defaults to os.Stderr.
	Writer io.Writer
	// Format is FormatHuman or FormatJSON.
	Format string
	// Level is the configured level name.
	Level string
	// Verbosity counts -v flags. Each one lowers the console threshold by
	// one level, down to debug.
	Verbosity int
	// Quiet silences the console regardless of Level and Verbosity.
	Quiet bool
	// FilePath, when set, also appends every record to that file in line
	// format, at debug level.
	FilePath string
}

// ConsoleLevel is the threshold for console output.
func (o Options) ConsoleLevel() slog.Level {
	if o.Quiet {
		return LevelSilent
	}
	level := ParseLevel(o.Level)
	if o.Verbosity > 0 {
		level -= slog.Level(4 * o.Verbosity)
		if level < slog.LevelDebug {
			level = slog.LevelDebug
		}
	}
	return level
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Build returns the logger for opts plus a closer for the log file, if one
// was opened. The closer is never nil.
func Build(opts Options) (*slog.Logger, io.Closer, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := opts.ConsoleLevel()
	console := NewLogger(w, level)
	if opts.Format == FormatJSON {
		console = NewJSONLogger(w, level)
	}
	if opts.FilePath == "" {
		return console, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	file := NewLogger(f, slog.LevelDebug)
	return slog.New(tee{console.Handler(), file.Handler()}), f, nil
}

// tee fans records out to the console and the log file.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
