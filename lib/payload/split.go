// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/format"
)

// ErrInvalidSplit is matched by every SplitError.
var ErrInvalidSplit = errors.New("invalid split")

// SplitError reports a part count that cannot split the payload: zero,
// or more parts than there are bytes.
type SplitError struct {
	Parts  uint32
	Length int
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("cannot split %d bytes into %d parts", e.Length, e.Parts)
}

// Is matches ErrInvalidSplit.
func (e *SplitError) Is(target error) bool {
	return target == ErrInvalidSplit
}

// Split cuts payload into parts partial payloads under a fresh random
// group id. See SplitWithID.
func Split(payload format.CompletePayload, parts uint32) ([]format.PartialPayload, error) {
	id, err := newGroupID()
	if err != nil {
		return nil, err
	}
	return SplitWithID(payload, parts, id)
}

// SplitWithID cuts payload into parts partial payloads with group id.
// The first len%parts chunks are one byte longer than the rest. Part 0
// is a head carrying payload's tags; the others are tails. Chunks are
// capped sub-slices of payload.Data, so appending to one never writes
// into its neighbour.
func SplitWithID(payload format.CompletePayload, parts uint32, id uint32) ([]format.PartialPayload, error) {
	length := len(payload.Data)
	if parts == 0 || uint64(parts) > uint64(length) {
		return nil, &SplitError{Parts: parts, Length: length}
	}

	quotient := length / int(parts)
	remainder := length % int(parts)

	result := make([]format.PartialPayload, 0, parts)
	offset := 0
	for index := range parts {
		size := quotient
		if int(index) < remainder {
			size++
		}
		chunk := payload.Data[offset : offset+size : offset+size]
		offset += size

		position := format.Index{ID: id, Index: index, Size: parts}
		if index == 0 {
			result = append(result, format.NewHead(format.PartialPayloadHead{
				Data:        chunk,
				Encryption:  payload.Encryption,
				Compression: payload.Compression,
				Index:       position,
			}))
			continue
		}
		result = append(result, format.NewTail(format.PartialPayloadTail{
			Data:  chunk,
			Index: position,
		}))
	}
	return result, nil
}

// newGroupID draws a group id from the system CSPRNG so that groups
// from unrelated generators do not collide.
func newGroupID() (uint32, error) {
	var buffer [4]byte
	if _, err := rand.Read(buffer[:]); err != nil {
		return 0, fmt.Errorf("generating group id: %w", err)
	}
	return binary.LittleEndian.Uint32(buffer[:]), nil
}
