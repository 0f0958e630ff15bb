// Package log configures the process-wide slog logger, optionally teeing
// output into a size-rotated file.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction. The zero value logs text at info level
// to stderr with no file output.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Unknown values fall
	// back to info.
	Level string

	// Format selects the handler: "text" (default) or "json".
	Format string

	// FilePath, when non-empty, additionally writes log output to this file
	// with size-based rotation.
	FilePath string

	// Rotation knobs, used only when FilePath is set.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Output overrides the primary writer (default os.Stderr). Tests use this
	// to capture log lines.
	Output io.Writer
}

// DefaultConfig returns the configuration used when the host application does
// not provide one.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// Setup builds a slog.Logger from cfg, installs it as the process default via
// slog.SetDefault, and returns it. It is safe to call again with a new
// configuration; the previous rotated file (if any) is left to its own
// lifecycle.
func Setup(cfg Config) (*slog.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.Output != nil {
		w = cfg.Output
	}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}
		w = io.MultiWriter(w, rotator)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
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

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
