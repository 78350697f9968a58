// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for qrcloak packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls.
//
// [Bytes] and [Shuffle] are seeded, so property tests that feed random
// data or random part orders are reproducible from the seed printed in
// a failure.
//
// All helpers call t.Fatalf on failure rather than returning errors.
//
// This package has no qrcloak-internal dependencies, so any package's
// tests can import it.
package testutil
