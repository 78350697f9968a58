// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/bureau-foundation/qrcloak/lib/format"
)

var (
	// ErrNoMatchingKey is wrapped by a DecryptError when none of the
	// offered identities can open the payload, including when no
	// identities were offered at all.
	ErrNoMatchingKey = errors.New("no identity matches the payload's recipients")

	// ErrIncorrectPassphrase is wrapped by a DecryptError when the
	// passphrase does not open the payload.
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")

	// ErrNoRecipients is returned when sealing to an empty recipient
	// list.
	ErrNoRecipients = errors.New("at least one recipient is required")
)

// SpecMismatchError is returned when a Decryption is applied to a
// payload tagged with a different encryption scheme.
type SpecMismatchError struct {
	Payload format.EncryptionSpec
	Tried   format.EncryptionSpec
}

func (e *SpecMismatchError) Error() string {
	return fmt.Sprintf("tried to decrypt with %s but payload is encrypted with %s", e.Tried, e.Payload)
}

// Is matches format.ErrSpecMismatch.
func (e *SpecMismatchError) Is(target error) bool {
	return target == format.ErrSpecMismatch
}

// DecryptError is returned when the payload declares the expected
// scheme but cannot be decrypted.
type DecryptError struct {
	Spec format.EncryptionSpec
	Err  error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("%s decryption failed: %v", e.Spec, e.Err)
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}

// Encryption seals compressed bytes.
type Encryption interface {
	// Spec is the tag stamped on payloads produced by Encrypt.
	Spec() format.EncryptionSpec
	Encrypt(plaintext []byte) ([]byte, error)
}

// Decryption opens a complete payload in place.
type Decryption interface {
	// Spec is the only tag this Decryption accepts.
	Spec() format.EncryptionSpec
	Decrypt(payload *format.CompletePayload) error
}

// NoEncryption passes data through unchanged. It is both an Encryption
// and a Decryption.
type NoEncryption struct{}

func (NoEncryption) Spec() format.EncryptionSpec { return format.NoEncryption }

func (NoEncryption) Encrypt(plaintext []byte) ([]byte, error) { return plaintext, nil }

func (NoEncryption) Decrypt(payload *format.CompletePayload) error {
	return checkSpec(payload, format.NoEncryption)
}

func checkSpec(payload *format.CompletePayload, tried format.EncryptionSpec) error {
	if payload.Encryption != tried {
		return &SpecMismatchError{Payload: payload.Encryption, Tried: tried}
	}
	return nil
}

func seal(plaintext []byte, recipients ...age.Recipient) ([]byte, error) {
	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// open decrypts ciphertext. A failure to match any identity is reported
// as noMatch, keeping the age error reachable.
func open(ciphertext []byte, noMatch error, identities ...age.Identity) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identities...)
	if err != nil {
		var ageNoMatch *age.NoIdentityMatchError
		if errors.As(err, &ageNoMatch) || errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, fmt.Errorf("%w: %w", noMatch, err)
		}
		return nil, err
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}
