// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire turns payloads into the bytes placed in QR codes and
// back.
//
// Two formats are supported. JSON is the human-readable form: binary
// data fields are Base45 strings, whose alphabet matches the QR
// alphanumeric mode. CBOR is the compact form: data fields are raw
// byte strings. In both formats a single payload is a bare map and
// several payloads are an array.
package wire
