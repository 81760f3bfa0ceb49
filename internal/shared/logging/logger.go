package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	With(args ...any) Logger
}

type SlogLogger struct {
	log *slog.Logger
}

// Options selects the level and output format of a logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

func NewSlogLogger(level slog.Level) Logger {
	return newSlogLogger(slog.NewJSONHandler(os.Stdout, handlerOptions(level)))
}

// New builds a logger from textual settings. Format is "json" or "text" and
// defaults to json; Output defaults to stdout.
func New(opts Options) (Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	switch strings.ToLower(opts.Format) {
	case "", "json":
		return newSlogLogger(slog.NewJSONHandler(out, handlerOptions(level))), nil
	case "text":
		return newSlogLogger(slog.NewTextHandler(out, handlerOptions(level))), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", opts.Format)
	}
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
	return l, nil
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return newSlogLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.TimeValue(a.Value.Time().UTC())
			}
			return a
		},
	}
}

func newSlogLogger(h slog.Handler) *SlogLogger {
	return &SlogLogger{log: slog.New(h)}
}

func (sl *SlogLogger) Debug(msg string, args ...any) {
	sl.log.Debug(msg, args...)
}

func (sl *SlogLogger) Info(msg string, args ...any) {
	sl.log.Info(msg, args...)
}

func (sl *SlogLogger) Warn(msg string, args ...any) {
	sl.log.Warn(msg, args...)
}

func (sl *SlogLogger) Error(msg string, args ...any) {
	sl.log.Error(msg, args...)
}

func (sl *SlogLogger) Fatal(msg string, args ...any) {
	sl.log.Error(msg, args...)
	os.Exit(1)
}

func (sl *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{log: sl.log.With(args...)}
}
