// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the qrcloak binary.
//
// Release builds inject [GitCommit], [GitDirty], [BuildTime] and
// [Version] with -ldflags -X. Builds without them fall back to the VCS
// stamp the Go toolchain embeds, and finally to "unknown".
package version
