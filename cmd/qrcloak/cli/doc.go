// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the qrcloak CLI.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a flag source, and a Run function. Flags come
// either from a [pflag.FlagSet] factory or from a params struct whose
// tagged fields are bound by [BindFlags]. [Command.Execute] handles
// subcommand routing, flag parsing and help output with examples.
//
// Unknown subcommands and flags are matched against the known names by
// Levenshtein distance and the closest one (distance <= 3) is suggested.
//
// Params structs embed [Globals] for --config and --verbose and
// [JSONOutput] for --json.
package cli
