// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"

	"github.com/bureau-foundation/qrcloak/lib/config"
)

// Globals is embedded in every params struct that reads the config
// file or logs.
type Globals struct {
	ConfigPath string `json:"-" flag:"config" desc:"config file (default $QRCLOAK_CONFIG)"`
	Verbose    bool   `json:"-" flag:"verbose,v" desc:"log at debug level"`
}

// LoadConfig loads --config, or $QRCLOAK_CONFIG, or the defaults.
func (g *Globals) LoadConfig() (*config.Config, error) {
	return config.Load(g.ConfigPath)
}

// Logger returns a command logger honouring --verbose.
func (g *Globals) Logger() *slog.Logger {
	return NewCommandLogger(g.Verbose)
}
