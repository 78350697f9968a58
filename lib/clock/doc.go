// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so that time-dependent code,
// such as expiring stale split groups, can be tested without sleeping.
//
// Production code injects [Real]. Tests inject [Fake] and move time
// with Advance.
package clock
