// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/qrcloak/lib/config"
	"github.com/bureau-foundation/qrcloak/lib/sealed"
	"github.com/bureau-foundation/qrcloak/lib/secret"
)

// Environment variables holding key material. Keys never appear on the
// command line, where other users could read them from the process
// table.
const (
	recipientsVariable = "AGE_KEY"
	identityVariable   = "AGE_PRIVATE_KEY"
	passphraseVariable = "AGE_PASSPHRASE"
)

// encryptionParams select how generate encrypts.
type encryptionParams struct {
	AgeKey        bool `json:"age_key"        flag:"age-key"        desc:"encrypt to the age recipients in $AGE_KEY (comma separated)"`
	AgePassphrase bool `json:"age_passphrase" flag:"age-passphrase" desc:"encrypt with the passphrase in $AGE_PASSPHRASE, prompting when unset"`
	WorkFactor    int  `json:"work_factor"    flag:"work-factor"    desc:"scrypt work factor for --age-passphrase (default from config)"`
}

// encryption builds the configured Encryption. The returned release
// function zeroes any secret material and must be called.
func (p encryptionParams) encryption(cfg *config.Config) (sealed.Encryption, func(), error) {
	switch {
	case p.AgeKey && p.AgePassphrase:
		return nil, nil, errors.New("--age-key and --age-passphrase are mutually exclusive")

	case p.AgeKey:
		recipients, err := sealed.ParseRecipients(os.Getenv(recipientsVariable))
		if err != nil {
			return nil, nil, fmt.Errorf("reading $%s: %w", recipientsVariable, err)
		}
		return sealed.AgeKeyEncryption{Recipients: recipients}, func() {}, nil

	case p.AgePassphrase:
		passphrase, err := readPassphrase()
		if err != nil {
			return nil, nil, err
		}
		encryption := sealed.NewAgePassphrase(passphrase)
		encryption.WorkFactor = cfg.ScryptWorkFactor
		if p.WorkFactor != 0 {
			encryption.WorkFactor = p.WorkFactor
		}
		return encryption, func() { encryption.Close() }, nil

	default:
		return sealed.NoEncryption{}, func() {}, nil
	}
}

// decryptionParams select how extract decrypts.
type decryptionParams struct {
	AgeKey        bool   `json:"age_key"        flag:"age-key"         desc:"decrypt with the age identities in $AGE_PRIVATE_KEY or --identity-file"`
	IdentityFile  string `json:"identity_file"  flag:"identity-file,i" desc:"read age identities from this file (- for stdin); implies --age-key"`
	AgePassphrase bool   `json:"age_passphrase" flag:"age-passphrase"  desc:"decrypt with the passphrase in $AGE_PASSPHRASE, prompting when unset"`
	WorkFactor    int    `json:"work_factor"    flag:"work-factor"     desc:"highest scrypt work factor to accept (default from config)"`
}

func (p decryptionParams) usesKey() bool {
	return p.AgeKey || p.IdentityFile != ""
}

// decryption builds the configured Decryption. The returned release
// function zeroes any secret material and must be called.
func (p decryptionParams) decryption(cfg *config.Config) (sealed.Decryption, func(), error) {
	switch {
	case p.usesKey() && p.AgePassphrase:
		return nil, nil, errors.New("--age-key and --age-passphrase are mutually exclusive")

	case p.usesKey():
		var source *secret.Buffer
		var err error
		if p.IdentityFile != "" {
			source, err = secret.ReadFromPath(p.IdentityFile)
		} else {
			source, err = secret.FromEnv(identityVariable)
		}
		if err != nil {
			return nil, nil, err
		}
		defer source.Close()

		identities, err := sealed.ParseIdentities(source)
		if err != nil {
			return nil, nil, err
		}
		decryption := sealed.NewAgeKeyDecryption(identities...)
		return decryption, func() { decryption.Close() }, nil

	case p.AgePassphrase:
		passphrase, err := readPassphrase()
		if err != nil {
			return nil, nil, err
		}
		decryption := sealed.NewAgePassphrase(passphrase)
		decryption.WorkFactor = cfg.ScryptWorkFactor
		if p.WorkFactor != 0 {
			decryption.WorkFactor = p.WorkFactor
		}
		return decryption, func() { decryption.Close() }, nil

	default:
		return sealed.NoEncryption{}, func() {}, nil
	}
}

// readPassphrase takes $AGE_PASSPHRASE, or prompts on the controlling
// terminal when it is unset.
func readPassphrase() (*secret.Buffer, error) {
	passphrase, err := secret.FromEnv(passphraseVariable)
	if err == nil {
		return passphrase, nil
	}
	if !errors.Is(err, secret.ErrEmpty) {
		return nil, err
	}
	return secret.Prompt(int(os.Stdin.Fd()), os.Stderr, "age passphrase")
}
