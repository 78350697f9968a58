// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package base45 implements the Base45 data encoding from RFC 9285.
//
// Base45 maps every two input bytes to three characters drawn from a
// 45-symbol alphabet (digits, upper-case letters, space, and
// "$%*+-./:"). That alphabet is exactly the QR code alphanumeric mode,
// so Base45 text packs into a QR symbol at 5.5 bits per character
// instead of the 8 bits byte mode would spend. Payload data fields in
// the JSON wire format are Base45 strings for this reason.
//
// The codec itself is github.com/dasio/base45. [Encode] never fails.
// [Decode] validates its input before handing it over, rejecting
// characters outside the alphabet (line breaks included), a dangling
// single character, and groups whose value exceeds the range of the
// bytes they encode.
package base45
