// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the defaults file of the qrcloak command.
//
// Configuration comes from at most one file, named by the --config
// flag or the QRCLOAK_CONFIG environment variable. There is no search
// path and no merging of several files: what the file says is what the
// command does, and flags override it. Without a file the built-in
// defaults apply.
//
// The file is YAML (.yaml, .yml) or JSON with comments (.json,
// .jsonc). Unknown keys are rejected so a misspelt option fails loudly
// instead of being ignored.
package config
