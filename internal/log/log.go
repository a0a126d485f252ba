// Package log provides the vault's process-wide structured logger: a
// thread-safe slog.Logger singleton configured from internal/config,
// adapted from the teacher's logging singleton.
package log

import (
	"log/slog"
	"os"
	"sync"

	"github.com/cardanohealth/vault/internal/config"
)

var (
	logger      *slog.Logger
	loggerMutex sync.Mutex
)

// Log returns the process-wide slog.Logger, creating it on first use
// with the level internal/config.LogLevel reports.
func Log() *slog.Logger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger != nil {
		return logger
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.LogLevel(),
	})
	logger = slog.New(handler)
	return logger
}

// Fatal logs msg at error level and terminates the process. Used at
// startup when a vault binary cannot come up in a safe state.
func Fatal(msg string, args ...any) {
	Log().Error(msg, args...)
	os.Exit(1)
}
