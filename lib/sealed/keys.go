// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/qrcloak/lib/format"
	"github.com/bureau-foundation/qrcloak/lib/secret"
)

// Keypair holds an age X25519 keypair. The caller must call Close.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... identity.
	PrivateKey *secret.Buffer

	// PublicKey is the age1... recipient. Safe to publish.
	PublicKey string
}

// Close releases the private key.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new X25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}

	// age only hands out the private key as a string, so one heap copy
	// is unavoidable.
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}

	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// ParsePublicKey checks that publicKey is an age X25519 recipient.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}

// ParsePrivateKey checks that privateKey holds an age X25519 identity.
func ParsePrivateKey(privateKey *secret.Buffer) error {
	if _, err := age.ParseX25519Identity(privateKey.String()); err != nil {
		return fmt.Errorf("invalid age private key: %w", err)
	}
	return nil
}

// PublicKeyOf returns the age1... recipient of an identity.
func PublicKeyOf(privateKey *secret.Buffer) (string, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return "", fmt.Errorf("invalid age private key: %w", err)
	}
	return identity.Recipient().String(), nil
}

// ParseRecipients splits a comma separated list of public keys, as
// found in $AGE_KEY, and validates each one. Blank entries are skipped.
func ParseRecipients(list string) ([]string, error) {
	var recipients []string
	for _, field := range strings.Split(list, ",") {
		key := strings.TrimSpace(field)
		if key == "" {
			continue
		}
		if err := ParsePublicKey(key); err != nil {
			return nil, err
		}
		recipients = append(recipients, key)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}

// ParseIdentities splits an identity file or a comma separated identity
// list into one buffer per key. Blank lines and lines starting with '#'
// are skipped, as in age identity files. The source buffer is not
// closed. On error no buffers leak.
func ParseIdentities(source *secret.Buffer) ([]*secret.Buffer, error) {
	var identities []*secret.Buffer
	release := func() {
		for _, identity := range identities {
			identity.Close()
		}
	}

	for _, line := range bytes.Split(source.Bytes(), []byte("\n")) {
		for _, field := range bytes.Split(line, []byte(",")) {
			key := bytes.TrimSpace(field)
			if len(key) == 0 || key[0] == '#' {
				continue
			}

			// NewFromBytes zeroes its input, so copy out of source first.
			identity, err := secret.NewFromBytes(bytes.Clone(key))
			if err != nil {
				release()
				return nil, fmt.Errorf("protecting identity: %w", err)
			}
			identities = append(identities, identity)
			if err := ParsePrivateKey(identity); err != nil {
				release()
				return nil, fmt.Errorf("identity %d: %w", len(identities), err)
			}
		}
	}

	if len(identities) == 0 {
		return nil, errors.New("no identities found")
	}
	return identities, nil
}

// AgeKeyEncryption seals payloads to a set of X25519 public keys.
type AgeKeyEncryption struct {
	// Recipients are age1... public keys.
	Recipients []string
}

func (e AgeKeyEncryption) Spec() format.EncryptionSpec { return format.AgeKey }

func (e AgeKeyEncryption) Encrypt(plaintext []byte) ([]byte, error) {
	if len(e.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	recipients := make([]age.Recipient, 0, len(e.Recipients))
	for _, key := range e.Recipients {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	return seal(plaintext, recipients...)
}

// AgeKeyDecryption opens payloads with any of a set of X25519
// identities.
type AgeKeyDecryption struct {
	identities []*secret.Buffer
}

// NewAgeKeyDecryption takes ownership of identities. Close releases
// them.
func NewAgeKeyDecryption(identities ...*secret.Buffer) *AgeKeyDecryption {
	return &AgeKeyDecryption{identities: identities}
}

// Close releases every identity.
func (d *AgeKeyDecryption) Close() error {
	var firstError error
	for _, identity := range d.identities {
		if err := identity.Close(); err != nil && firstError == nil {
			firstError = err
		}
	}
	return firstError
}

func (d *AgeKeyDecryption) Spec() format.EncryptionSpec { return format.AgeKey }

func (d *AgeKeyDecryption) Decrypt(payload *format.CompletePayload) error {
	if err := checkSpec(payload, format.AgeKey); err != nil {
		return err
	}
	if len(d.identities) == 0 {
		return &DecryptError{Spec: format.AgeKey, Err: ErrNoMatchingKey}
	}

	identities := make([]age.Identity, 0, len(d.identities))
	for index, buffer := range d.identities {
		identity, err := age.ParseX25519Identity(buffer.String())
		if err != nil {
			return &DecryptError{Spec: format.AgeKey, Err: fmt.Errorf("parsing identity %d: %w", index+1, err)}
		}
		identities = append(identities, identity)
	}

	plaintext, err := open(payload.Data, ErrNoMatchingKey, identities...)
	if err != nil {
		return &DecryptError{Spec: format.AgeKey, Err: err}
	}
	payload.Data = plaintext
	return nil
}
