// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package format defines the qrcloak payload data model and its wire
// shapes.
//
// A [Payload] is the unit that travels inside one physical container
// (one QR code). It is either a [CompletePayload], holding content that
// was never split, or a [PartialPayload], holding one chunk of a split
// group. Partial payloads are a tagged union of [PartialPayloadHead]
// (index 0, carries the group's encryption and compression tags) and
// [PartialPayloadTail] (every other index). The [Index] on each part
// names its group (id, size) and its position.
//
// [EncryptionSpec] and [CompressionSpec] are tags, not keys: they
// record which scheme produced the data so the matching counterpart
// can be selected at extraction time. Selecting the wrong counterpart
// is reported as [ErrSpecMismatch].
//
// # Wire shapes
//
// JSON (human readable, data fields in Base45):
//
//	{"data":"…","encryption":"age_key","compression":"gzip"}
//	{"head":{"data":"…","compression":"gzip","index":{"id":7,"index":0,"size":3}}}
//	{"tail":{"data":"…","index":{"id":7,"index":1,"size":3}}}
//
// CBOR (binary) uses the same keys with data as raw byte strings.
// Payloads are untagged at the top level: the decoder infers Complete
// versus Partial from the keys present. Default tags are omitted.
//
// [OneOrMore] is a non-empty sequence that serializes a single element
// bare and several as an array, the form used when many payloads share
// one container.
package format
