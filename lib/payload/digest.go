// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// domainKey is a 32-byte BLAKE3 key. Each use of the hash gets its own
// key so a digest from one context never validates in another.
type domainKey [32]byte

var (
	fingerprintDomainKey = domainKey{
		'q', 'r', 'c', 'l', 'o', 'a', 'k', '.', 'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r',
		'i', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	checkpointDomainKey = domainKey{
		'q', 'r', 'c', 'l', 'o', 'a', 'k', '.', 'c', 'h', 'e', 'c', 'k', 'p', 'o', 'i',
		'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

func keyedHash(key domainKey, data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("payload: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Fingerprint returns a short hex digest of data for logs and status
// output, so two payloads can be told apart without printing them.
func Fingerprint(data []byte) string {
	digest := keyedHash(fingerprintDomainKey, data)
	return hex.EncodeToString(digest[:8])
}
