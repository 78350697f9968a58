// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/qrcloak/lib/codec"
)

// Checkpoint layout: magic, version byte, keyed BLAKE3 digest of the
// body, CBOR body.
const (
	checkpointMagic   = "QRCK"
	checkpointVersion = 1
	digestSize        = 32
	headerSize        = len(checkpointMagic) + 1 + digestSize
)

// ErrCorruptCheckpoint is returned when a checkpoint's framing or
// digest does not check out.
var ErrCorruptCheckpoint = errors.New("corrupt checkpoint")

// WriteCheckpoint serializes state to w.
func WriteCheckpoint(w io.Writer, state UnmergedPayloads) error {
	body, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	digest := keyedHash(checkpointDomainKey, body)

	var header bytes.Buffer
	header.WriteString(checkpointMagic)
	header.WriteByte(checkpointVersion)
	header.Write(digest[:])

	if _, err := w.Write(header.Bytes()); err != nil {
		return fmt.Errorf("writing checkpoint header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing checkpoint body: %w", err)
	}
	return nil
}

// ReadCheckpoint reads a state written by WriteCheckpoint.
func ReadCheckpoint(r io.Reader) (UnmergedPayloads, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return UnmergedPayloads{}, fmt.Errorf("reading checkpoint: %w", err)
	}

	if len(data) < headerSize || string(data[:len(checkpointMagic)]) != checkpointMagic {
		return UnmergedPayloads{}, fmt.Errorf("%w: bad magic", ErrCorruptCheckpoint)
	}
	if version := data[len(checkpointMagic)]; version != checkpointVersion {
		return UnmergedPayloads{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptCheckpoint, version)
	}

	stored := data[len(checkpointMagic)+1 : headerSize]
	body := data[headerSize:]
	computed := keyedHash(checkpointDomainKey, body)
	if subtle.ConstantTimeCompare(stored, computed[:]) != 1 {
		return UnmergedPayloads{}, fmt.Errorf("%w: digest mismatch", ErrCorruptCheckpoint)
	}

	var state UnmergedPayloads
	if err := codec.Unmarshal(body, &state); err != nil {
		return UnmergedPayloads{}, fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
	}
	return state, nil
}

// SaveCheckpoint writes state to path atomically: a temporary file in
// the same directory is renamed over path.
func SaveCheckpoint(path string, state UnmergedPayloads) error {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating checkpoint: %w", err)
	}
	temporary := file.Name()
	defer os.Remove(temporary)

	if err := WriteCheckpoint(file, state); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("syncing checkpoint: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing checkpoint: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads the state saved at path. A missing file is an
// empty state.
func LoadCheckpoint(path string) (UnmergedPayloads, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return UnmergedPayloads{}, nil
	}
	if err != nil {
		return UnmergedPayloads{}, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer file.Close()

	state, err := ReadCheckpoint(file)
	if err != nil {
		return UnmergedPayloads{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return state, nil
}
