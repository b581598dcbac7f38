package core

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides a structured logging interface for the application.
// *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Debug(msg string, fields ...any)
}

// Log file rotation limits.
const (
	logMaxSizeMB  = 20
	logMaxBackups = 5
	logMaxAgeDays = 14
)

// ParseLevel maps a level name to a slog level. Unknown names are INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a JSON logger at the given level. With a non-empty file
// the output goes to a size-rotated log file instead of stderr. The returned
// closer releases the file.
func NewLogger(level, file string) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		out, closer = rotator, rotator
	}

	return newJSONLogger(out, level), closer
}

func newJSONLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
