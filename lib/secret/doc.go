// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passphrases and age identities outside the Go
// heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM and excluded
// from core dumps where the kernel allows it. Close zeroes and unmaps
// it. The garbage collector never sees the region, so it cannot leave
// stale copies of a key behind.
//
// The constructors in source.go move secrets into a Buffer straight
// from where qrcloak finds them: an environment variable, a file, or an
// interactive terminal prompt.
package secret
