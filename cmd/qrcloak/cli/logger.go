// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger on stderr. A terminal
// gets slog.TextHandler, anything else gets slog.JSONHandler. verbose
// lowers the level from info to debug.
//
// Callers scope the logger with command context via With():
//
//	logger := cli.NewCommandLogger(params.Verbose).With("command", "payload/merge")
func NewCommandLogger(verbose bool) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), verbose)
}

func newLogger(w io.Writer, terminal, verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
