package logger

import (
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger. It embeds slog so call
// sites use the usual message plus key-value pairs API.
type Logger struct {
	*slog.Logger
}

// New builds a logger writing text records to stdout. Records below the
// given level are dropped.
func New(level int) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(level),
	})
	return &Logger{Logger: slog.New(handler)}
}

// Fatal logs at error level and terminates the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
