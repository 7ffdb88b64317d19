package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a slog logger writing to w with the configured level and format.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: c.level()}

	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOptions))
	}

	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

func (c LoggingConfig) level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return slog.LevelInfo
	}

	return level
}
