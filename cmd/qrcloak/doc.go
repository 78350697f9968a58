// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// qrcloak turns data into QR-code-sized payloads and back.
//
// Usage:
//
//	qrcloak payload generate [flags] [file]
//	qrcloak payload merge [flags] [file...]
//	qrcloak payload extract [flags] [file...]
//	qrcloak payload status [flags] [file...]
//	qrcloak key generate [-o file]
//	qrcloak key public [file]
//	qrcloak version
//
// Run "qrcloak <command> --help" for the flags of each command.
package main
