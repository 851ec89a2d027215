// Package logger provides the application-wide structured logger
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init configures the global logger with the given level.
// Output is human readable on a terminal and JSON otherwise.
func Init(level string) {
	InitWithWriter(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
}

// InitWithWriter configures the global logger to write to w
func InitWithWriter(w io.Writer, level string, text bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if text {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	log = slog.New(h)
	slog.SetDefault(log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func Debug(msg string, args ...any) { log.Debug(msg, args...) }

func Info(msg string, args ...any) { log.Info(msg, args...) }

func Warn(msg string, args ...any) { log.Warn(msg, args...) }

func Error(msg string, args ...any) { log.Error(msg, args...) }
