// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/compression"
	"github.com/bureau-foundation/qrcloak/lib/format"
	"github.com/bureau-foundation/qrcloak/lib/sealed"
)

// Generator builds payloads from raw bytes. The zero value neither
// compresses nor encrypts and does not split.
type Generator struct {
	// Compression runs first. Nil means none.
	Compression compression.Compression

	// Encryption runs on the compressed bytes. Nil means none.
	Encryption sealed.Encryption

	// Parts is the split count used by GenerateParts. Zero and one
	// both mean a single complete payload.
	Parts uint32
}

// Generate compresses then encrypts raw and stamps both tags.
func (g Generator) Generate(raw []byte) (format.CompletePayload, error) {
	compressor := g.Compression
	if compressor == nil {
		compressor = compression.None{}
	}
	encryption := g.Encryption
	if encryption == nil {
		encryption = sealed.NoEncryption{}
	}

	compressed, err := compressor.Process(raw)
	if err != nil {
		return format.CompletePayload{}, fmt.Errorf("compressing payload: %w", err)
	}
	encrypted, err := encryption.Encrypt(compressed)
	if err != nil {
		return format.CompletePayload{}, fmt.Errorf("encrypting payload: %w", err)
	}

	return format.CompletePayload{
		Data:        encrypted,
		Encryption:  encryption.Spec(),
		Compression: compressor.Spec(),
	}, nil
}

// GenerateParts generates a payload and splits it into g.Parts parts
// when g.Parts is above one.
func (g Generator) GenerateParts(raw []byte) ([]format.Payload, error) {
	complete, err := g.Generate(raw)
	if err != nil {
		return nil, err
	}
	if g.Parts <= 1 {
		return []format.Payload{format.FromComplete(complete)}, nil
	}

	parts, err := Split(complete, g.Parts)
	if err != nil {
		return nil, fmt.Errorf("splitting payload: %w", err)
	}
	return format.FromPartials(parts), nil
}
