package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvFile  = "KWSWEEP_LOG"
	EnvLevel = "KWSWEEP_LOG_LEVEL"
)

func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FromEnv logs to the file named by KWSWEEP_LOG, or nowhere when unset; the
// terminal belongs to the UI. The returned closer is never nil.
func FromEnv() (*slog.Logger, io.Closer, error) {
	path := strings.TrimSpace(os.Getenv(EnvFile))
	if path == "" {
		return Discard(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Discard(), io.NopCloser(nil), err
	}
	return New(f, ParseLevel(os.Getenv(EnvLevel))), f, nil
}

// ParseLevel maps debug, warn and error; anything else is info.
func ParseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
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
