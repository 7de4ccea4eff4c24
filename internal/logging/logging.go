// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"fileapi/internal/config"
)

// New returns a logger configured from cfg and installs it as the slog default.
// Production uses one JSON object per line; everything else gets colorized tint output.
func New(cfg *config.AppConfig) *slog.Logger {
	logger := newLogger(os.Stdout, cfg.IsProduction(), levelFor(cfg), cfg.Location())
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())

	return logger
}

// NewJSON returns a JSON logger writing to w with a "ts" timestamp in loc.
func NewJSON(w io.Writer, level slog.Level, loc *time.Location) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: timestampIn(loc),
	}))
}

func newLogger(w io.Writer, prod bool, level slog.Level, loc *time.Location) *slog.Logger {
	if prod {
		return NewJSON(w, level, loc)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  true,
		TimeFormat: "15:04:05.000",
	}))
}

func timestampIn(loc *time.Location) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
		}
		return a
	}
}

func levelFor(cfg *config.AppConfig) slog.Level {
	if cfg.LogLevel == "" {
		if cfg.IsProduction() {
			return slog.LevelInfo
		}
		return slog.LevelDebug
	}
	return ParseLevel(cfg.LogLevel)
}

// ParseLevel maps a textual level to slog, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
