// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload implements "qrcloak payload": generating payloads
// from raw bytes, merging scanned parts, extracting the original bytes
// and reporting on groups still waiting for parts.
//
// Payload text is read from file arguments or stdin and written to
// stdout or --output. In JSON each payload is one line unless --merge
// or --pretty is set; in CBOR payloads are written as a CBOR sequence.
package payload
