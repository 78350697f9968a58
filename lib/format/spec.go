// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"errors"
	"fmt"
)

// ErrSpecMismatch is matched (via errors.Is) by the mismatch errors of
// the encryption and compression layers: the caller asked to undo a
// scheme the payload does not declare.
var ErrSpecMismatch = errors.New("spec mismatch")

// EncryptionSpec identifies the encryption scheme that produced a
// payload's data. The zero value is NoEncryption.
type EncryptionSpec uint8

const (
	NoEncryption EncryptionSpec = iota
	AgePassphrase
	AgeKey
)

var encryptionNames = [...]string{
	NoEncryption:  "no_encryption",
	AgePassphrase: "age_passphrase",
	AgeKey:        "age_key",
}

func (spec EncryptionSpec) String() string {
	if int(spec) < len(encryptionNames) {
		return encryptionNames[spec]
	}
	return fmt.Sprintf("unknown(%d)", uint8(spec))
}

// ParseEncryptionSpec parses the wire name of an encryption tag.
func ParseEncryptionSpec(name string) (EncryptionSpec, error) {
	for spec, candidate := range encryptionNames {
		if candidate == name {
			return EncryptionSpec(spec), nil
		}
	}
	return 0, fmt.Errorf("unknown encryption spec %q", name)
}

func (spec EncryptionSpec) MarshalText() ([]byte, error) {
	if int(spec) >= len(encryptionNames) {
		return nil, fmt.Errorf("cannot marshal encryption spec %d", uint8(spec))
	}
	return []byte(encryptionNames[spec]), nil
}

func (spec *EncryptionSpec) UnmarshalText(text []byte) error {
	parsed, err := ParseEncryptionSpec(string(text))
	if err != nil {
		return err
	}
	*spec = parsed
	return nil
}

// CompressionSpec identifies the compression scheme that produced a
// payload's data. The zero value is NoCompression.
type CompressionSpec uint8

const (
	NoCompression CompressionSpec = iota
	Gzip
	Zstd
	LZ4
)

var compressionNames = [...]string{
	NoCompression: "no_compression",
	Gzip:          "gzip",
	Zstd:          "zstd",
	LZ4:           "lz4",
}

func (spec CompressionSpec) String() string {
	if int(spec) < len(compressionNames) {
		return compressionNames[spec]
	}
	return fmt.Sprintf("unknown(%d)", uint8(spec))
}

// ParseCompressionSpec parses the wire name of a compression tag.
func ParseCompressionSpec(name string) (CompressionSpec, error) {
	for spec, candidate := range compressionNames {
		if candidate == name {
			return CompressionSpec(spec), nil
		}
	}
	return 0, fmt.Errorf("unknown compression spec %q", name)
}

func (spec CompressionSpec) MarshalText() ([]byte, error) {
	if int(spec) >= len(compressionNames) {
		return nil, fmt.Errorf("cannot marshal compression spec %d", uint8(spec))
	}
	return []byte(compressionNames[spec]), nil
}

func (spec *CompressionSpec) UnmarshalText(text []byte) error {
	parsed, err := ParseCompressionSpec(string(text))
	if err != nil {
		return err
	}
	*spec = parsed
	return nil
}
