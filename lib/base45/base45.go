// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package base45

import (
	"errors"
	"fmt"

	b45 "github.com/dasio/base45"
)

// Alphabet is the RFC 9285 symbol table, in value order.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// ErrInvalidLength is returned by Decode when the input length leaves
// a single trailing character, which cannot encode any byte.
var ErrInvalidLength = errors.New("base45: invalid input length")

// CorruptInputError reports an invalid character or an out-of-range
// group at the given offset in the input.
type CorruptInputError struct {
	Offset int
	Reason string
}

func (e *CorruptInputError) Error() string {
	return fmt.Sprintf("base45: illegal data at input byte %d: %s", e.Offset, e.Reason)
}

// decodeMap holds the value of each alphabet byte plus one, so that
// zero marks bytes outside the alphabet.
var decodeMap [256]byte

func init() {
	for index := range len(Alphabet) {
		decodeMap[Alphabet[index]] = byte(index + 1)
	}
}

// EncodedLen returns the length in characters of the Base45 encoding
// of n source bytes.
func EncodedLen(n int) int {
	return b45.EncodedLen(n)
}

// Encode returns the Base45 encoding of data.
func Encode(data []byte) string {
	return b45.EncodeToString(data)
}

// Decode returns the bytes represented by the Base45 string text.
//
// The underlying decoder skips CR and LF and truncates groups whose
// value overflows the bytes they encode, so the whole input is checked
// first. Two strings never decode to the same bytes.
func Decode(text string) ([]byte, error) {
	if err := check(text); err != nil {
		return nil, err
	}
	decoded, err := b45.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("base45: %w", err)
	}
	return decoded, nil
}

// check verifies the length, the alphabet and the range of every
// group of text.
func check(text string) error {
	if len(text)%3 == 1 {
		return ErrInvalidLength
	}

	for offset := 0; offset < len(text); offset += 3 {
		end := min(offset+3, len(text))

		value := 0
		weight := 1
		for position := offset; position < end; position++ {
			digit := decodeMap[text[position]]
			if digit == 0 {
				return &CorruptInputError{
					Offset: position,
					Reason: fmt.Sprintf("character %q is not in the alphabet", text[position]),
				}
			}
			value += int(digit-1) * weight
			weight *= 45
		}

		if end-offset == 3 && value > 0xFFFF {
			return &CorruptInputError{Offset: offset, Reason: "group value exceeds two bytes"}
		}
		if end-offset == 2 && value > 0xFF {
			return &CorruptInputError{Offset: offset, Reason: "group value exceeds one byte"}
		}
	}
	return nil
}

// Valid reports whether text consists only of alphabet characters.
// It does not check length or group ranges; use Decode for that.
func Valid(text string) bool {
	for index := range len(text) {
		if decodeMap[text[index]] == 0 {
			return false
		}
	}
	return true
}
