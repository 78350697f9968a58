// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides qrcloak's standard CBOR encoding configuration.
//
// qrcloak serializes payloads in two formats with a clear boundary:
//
//   - JSON is the human-readable wire form. Binary data fields are
//     Base45 strings so the text fits the QR alphanumeric mode.
//   - CBOR is the compact binary wire form and the on-disk format of
//     merge checkpoints. Binary data fields are raw byte strings.
//
// Payload types carry `json` struct tags only. fxamacker/cbor v2 reads
// `json` tags when `cbor` tags are absent, so one tag controls field
// naming and omitempty for both formats.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical payload always produces identical bytes, which keeps
// checkpoint digests stable.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
