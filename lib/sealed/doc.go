// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed implements the encryption layer of a payload with
// filippo.io/age.
//
// An [Encryption] seals compressed bytes and names the
// [format.EncryptionSpec] tag to stamp on the payload. A [Decryption]
// checks that tag before touching the data: applying the wrong scheme
// is a [SpecMismatchError], never an attempt to decrypt. Failures of
// the matching scheme are [DecryptError] values wrapping
// [ErrNoMatchingKey] or [ErrIncorrectPassphrase].
//
// Two age schemes are supported. [AgePassphrase] uses an scrypt
// recipient and works in both directions. [AgeKeyEncryption] seals to
// any number of X25519 public keys, and [AgeKeyDecryption] offers every
// identity it holds, so a payload sealed to several recipients opens
// with any one of their keys.
//
// Passphrases and private keys live in [secret.Buffer] values. The
// types that hold them must be closed.
package sealed
