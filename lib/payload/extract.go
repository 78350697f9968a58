// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/compression"
	"github.com/bureau-foundation/qrcloak/lib/format"
	"github.com/bureau-foundation/qrcloak/lib/sealed"
)

// Stage names the extraction step that failed.
type Stage string

const (
	StageDecrypt    Stage = "decrypt"
	StageDecompress Stage = "decompress"
)

// ExtractError wraps the error of the failed stage. errors.Is and
// errors.As see through it.
type ExtractError struct {
	Stage Stage
	Err   error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Extractor recovers raw bytes from complete payloads. The zero value
// accepts only payloads that are neither encrypted nor compressed.
type Extractor struct {
	// Decryption runs first. Nil means none.
	Decryption sealed.Decryption

	// Decompression runs on the decrypted bytes.
	Decompression compression.Decompression
}

// Extract decrypts then decompresses payload. The caller's payload is
// not modified.
func (e Extractor) Extract(payload format.CompletePayload) ([]byte, error) {
	decryption := e.Decryption
	if decryption == nil {
		decryption = sealed.NoEncryption{}
	}

	if err := decryption.Decrypt(&payload); err != nil {
		return nil, &ExtractError{Stage: StageDecrypt, Err: err}
	}
	if err := e.Decompression.Process(&payload); err != nil {
		return nil, &ExtractError{Stage: StageDecompress, Err: err}
	}
	return payload.Data, nil
}
