// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"fmt"

	"filippo.io/age"

	"github.com/bureau-foundation/qrcloak/lib/format"
	"github.com/bureau-foundation/qrcloak/lib/secret"
)

// maxWorkFactor is the largest scrypt work factor age accepts.
const maxWorkFactor = 30

// defaultMaxWorkFactor is age's own ceiling when decrypting.
const defaultMaxWorkFactor = 22

// AgePassphrase seals and opens payloads with an scrypt passphrase. It
// is both an Encryption and a Decryption.
type AgePassphrase struct {
	passphrase *secret.Buffer

	// WorkFactor is the scrypt log2 work factor used when sealing.
	// Zero selects age's default. Opening accepts payloads sealed at
	// up to this factor or age's default ceiling, whichever is larger.
	WorkFactor int
}

// NewAgePassphrase takes ownership of passphrase. Close releases it.
func NewAgePassphrase(passphrase *secret.Buffer) *AgePassphrase {
	return &AgePassphrase{passphrase: passphrase}
}

// Close releases the passphrase.
func (p *AgePassphrase) Close() error {
	return p.passphrase.Close()
}

func (p *AgePassphrase) Spec() format.EncryptionSpec { return format.AgePassphrase }

func (p *AgePassphrase) Encrypt(plaintext []byte) ([]byte, error) {
	if p.WorkFactor < 0 || p.WorkFactor > maxWorkFactor {
		return nil, fmt.Errorf("scrypt work factor %d outside 1..%d", p.WorkFactor, maxWorkFactor)
	}

	recipient, err := age.NewScryptRecipient(p.passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if p.WorkFactor > 0 {
		recipient.SetWorkFactor(p.WorkFactor)
	}
	return seal(plaintext, recipient)
}

func (p *AgePassphrase) Decrypt(payload *format.CompletePayload) error {
	if err := checkSpec(payload, format.AgePassphrase); err != nil {
		return err
	}

	identity, err := age.NewScryptIdentity(p.passphrase.String())
	if err != nil {
		return &DecryptError{Spec: format.AgePassphrase, Err: fmt.Errorf("creating scrypt identity: %w", err)}
	}
	if p.WorkFactor > defaultMaxWorkFactor && p.WorkFactor <= maxWorkFactor {
		identity.SetMaxWorkFactor(p.WorkFactor)
	}

	plaintext, err := open(payload.Data, ErrIncorrectPassphrase, identity)
	if err != nil {
		return &DecryptError{Spec: format.AgePassphrase, Err: err}
	}
	payload.Data = plaintext
	return nil
}
