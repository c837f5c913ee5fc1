package internal

import (
	"context"
	"log/slog"
	"strings"
)

// LogWriter is an io.Writer forwarding each write as one slog record.
// It routes the output of libraries writing plain text (gin, net/http)
// to the application logger.
type LogWriter struct {
	logger    *slog.Logger
	component string
	level     slog.Level
}

func NewLogWriter(logger *slog.Logger, component string, level slog.Level) *LogWriter {
	return &LogWriter{logger: logger, component: component, level: level}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg == "" {
		return len(p), nil
	}
	w.logger.Log(context.Background(), w.level, msg, "component", w.component)
	return len(p), nil
}
