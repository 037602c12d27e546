// Package logging builds the shell's diagnostic logger.
//
// User-facing output (prompts, job reports) never goes through the logger;
// it only carries diagnostics such as failed system calls.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"jobsh/internal/config"
)

// New returns a text logger for cfg tagged with a fresh session id. The
// returned closer releases the log file, if one was opened.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	logger := slog.New(handler).With(slog.String("session", uuid.NewString()))
	return logger, closer, nil
}

// ParseLevel maps a config level name to a slog level. Unknown names map to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
