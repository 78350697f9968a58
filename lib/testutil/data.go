// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "math/rand/v2"

// Bytes returns n pseudo-random bytes determined by seed.
func Bytes(seed uint64, n int) []byte {
	source := rand.NewChaCha8(seedKey(seed))
	data := make([]byte, n)
	source.Read(data)
	return data
}

// Shuffle permutes items in place, deterministically for a seed.
func Shuffle[T any](seed uint64, items []T) {
	random := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	random.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

func seedKey(seed uint64) [32]byte {
	var key [32]byte
	for index := range 8 {
		key[index] = byte(seed >> (8 * index))
	}
	return key
}
