package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	level  = new(slog.LevelVar)
	format = "text"
)

// Configure sets the level and handler format ("text" or "json") used by
// loggers created afterwards.
func Configure(lvl, fmtName string) {
	level.Set(ParseLevel(lvl))
	if strings.EqualFold(fmtName, "json") {
		format = "json"
	} else {
		format = "text"
	}
}

func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger tagged with the component name.
func New(loggerName string) *slog.Logger {
	return NewWithWriter(loggerName, os.Stdout)
}

func NewWithWriter(loggerName string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level.Level() == slog.LevelDebug,
	}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	attrs := []slog.Attr{slog.String("logger", loggerName)}
	return slog.New(handler.WithAttrs(attrs))
}

// Discard is used by tests that do not care about log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
