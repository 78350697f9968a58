// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload turns raw bytes into payloads small enough for a QR
// code and back again.
//
// The pipeline has four stages:
//
//   - [Generator] compresses then encrypts raw bytes into a
//     [format.CompletePayload], optionally splitting it.
//   - [Split] cuts a complete payload into a group of partial payloads
//     sharing a random id. The head carries the group's tags.
//   - [Merge] reassembles groups from partials arriving in any order,
//     any number at a time. Unfinished groups are carried in
//     [UnmergedPayloads], which the caller feeds into the next call.
//   - [Extractor] decrypts then decompresses a complete payload.
//
// Merge is pure. [Session] wraps it for concurrent producers, adds
// structured logging and expires groups whose parts stopped arriving.
// [WriteCheckpoint] and [ReadCheckpoint] persist unfinished groups
// across restarts.
package payload
