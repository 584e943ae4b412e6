package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel accepts error, warn, info or debug.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: log level %q (must be error, warn, info, or debug)", ErrInvalid, level)
	}
}

// SetLogLevel overrides the configured level, typically from a flag, and
// rejects levels ParseLogLevel does not know.
func (c *Config) SetLogLevel(level string) error {
	if _, err := ParseLogLevel(level); err != nil {
		return err
	}
	c.Logging.Level = level
	return nil
}

// NewLogger returns a text logger at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLogLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
