// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Conform to the slog.Leveler interface.
func (c LoggingConfig) Level() slog.Level {
	switch c.LevelStr {
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

// Set the structured logger as given in the config.
func (c LoggingConfig) SetDefaultLogger() {
	slog.SetDefault(slog.New(c.newHandler(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))))
	slog.Info("logging: set default logger", "level", c.LevelStr, "format", c.Format)
}

// The "auto" format (or no format at all) logs text on a terminal and json otherwise.
func (c LoggingConfig) newHandler(w io.Writer, isTerminal bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: c}
	switch c.Format {
	case "json":
		return slog.NewJSONHandler(w, opts)
	case "text":
		return slog.NewTextHandler(w, opts)
	default:
		if isTerminal {
			return slog.NewTextHandler(w, opts)
		}
		return slog.NewJSONHandler(w, opts)
	}
}
