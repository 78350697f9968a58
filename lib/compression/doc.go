// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression implements the compression layer of a payload.
//
// The two sides are asymmetric. A [Compression] turns raw bytes into
// compressed bytes and reports the [format.CompressionSpec] tag to stamp
// on the payload. A [Decompression] checks that tag against the scheme
// it was configured for and reverses it in place, returning a
// [SpecMismatchError] when the payload declares a different scheme.
//
// Every decompressor is bounded: output beyond MaxSize fails with
// [ErrTooLarge] instead of expanding a hostile payload into memory.
package compression
