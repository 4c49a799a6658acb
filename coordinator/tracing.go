package coordinator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// InitTracing opens logFile (falling back to stderr on failure, mirroring
// the teacher's setupLogger) at the given level and returns the resolved
// absolute path actually used (§6).
func InitTracing(logFile, level string) (string, *slog.Logger) {
	handlerOpts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	if logFile == "" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
		return "", logger
	}

	abs, err := filepath.Abs(logFile)
	if err != nil {
		abs = logFile
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coordinator: cannot open log file %s: %v, falling back to stderr\n", abs, err)
		logger := slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
		return "", logger
	}

	logger := slog.New(slog.NewTextHandler(f, handlerOpts))
	return abs, logger
}
