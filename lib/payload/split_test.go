// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/qrcloak/lib/format"
)

func TestSplit_ChunkLengths(t *testing.T) {
	payload := format.CompletePayload{Data: []byte("hello world")}

	parts, err := Split(payload, 4)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	want := []string{"hel", "lo ", "wor", "ld"}
	if len(parts) != len(want) {
		t.Fatalf("Split() returned %d parts, want %d", len(parts), len(want))
	}
	id := parts[0].Index().ID
	for index, part := range parts {
		if string(part.Data()) != want[index] {
			t.Errorf("part %d data = %q, want %q", index, part.Data(), want[index])
		}
		position := part.Index()
		if position.ID != id || position.Index != uint32(index) || position.Size != 4 {
			t.Errorf("part %d index = %s", index, position)
		}
		if part.Misconfigured() {
			t.Errorf("part %d is misconfigured", index)
		}
	}
}

func TestSplit_HeadCarriesTags(t *testing.T) {
	payload := format.CompletePayload{
		Data:        []byte("abcdef"),
		Encryption:  format.AgeKey,
		Compression: format.Zstd,
	}

	parts, err := SplitWithID(payload, 3, 42)
	if err != nil {
		t.Fatalf("SplitWithID() error: %v", err)
	}

	head := parts[0].Head
	if head == nil {
		t.Fatal("part 0 is not a head")
	}
	if head.Encryption != format.AgeKey || head.Compression != format.Zstd {
		t.Errorf("head tags = %s/%s, want age_key/zstd", head.Encryption, head.Compression)
	}
	if head.Index != (format.Index{ID: 42, Index: 0, Size: 3}) {
		t.Errorf("head index = %s", head.Index)
	}
	for index, part := range parts[1:] {
		if part.Tail == nil {
			t.Errorf("part %d is not a tail", index+1)
		}
	}
}

func TestSplit_OnePart(t *testing.T) {
	parts, err := Split(format.CompletePayload{Data: []byte("abc")}, 1)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if len(parts) != 1 || parts[0].Head == nil || string(parts[0].Data()) != "abc" {
		t.Errorf("Split(1) = %+v", parts)
	}
}

func TestSplit_EveryByteItsOwnPart(t *testing.T) {
	data := []byte("abcde")
	parts, err := Split(format.CompletePayload{Data: data}, uint32(len(data)))
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	for index, part := range parts {
		if len(part.Data()) != 1 || part.Data()[0] != data[index] {
			t.Errorf("part %d = %q", index, part.Data())
		}
	}
}

func TestSplit_InvalidPartCount(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		parts uint32
	}{
		{"zero parts", []byte("abc"), 0},
		{"more parts than bytes", []byte("abc"), 4},
		{"empty data", nil, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Split(format.CompletePayload{Data: test.data}, test.parts)
			if !errors.Is(err, ErrInvalidSplit) {
				t.Fatalf("Split() error = %v, want ErrInvalidSplit", err)
			}
			var splitErr *SplitError
			if !errors.As(err, &splitErr) || splitErr.Parts != test.parts || splitErr.Length != len(test.data) {
				t.Errorf("error = %#v", err)
			}
		})
	}
}

func TestSplit_ChunksDoNotAlias(t *testing.T) {
	data := []byte("aabbcc")
	parts, err := SplitWithID(format.CompletePayload{Data: data}, 3, 1)
	if err != nil {
		t.Fatalf("SplitWithID() error: %v", err)
	}

	first := parts[0].Head.Data
	_ = append(first, 'X')
	if !bytes.Equal(data, []byte("aabbcc")) {
		t.Errorf("appending to a chunk modified the source: %q", data)
	}
}

func TestSplit_RandomIDs(t *testing.T) {
	seen := make(map[uint32]bool)
	for range 8 {
		parts, err := Split(format.CompletePayload{Data: []byte("abcd")}, 2)
		if err != nil {
			t.Fatalf("Split() error: %v", err)
		}
		seen[parts[0].Index().ID] = true
	}
	if len(seen) < 2 {
		t.Error("eight splits produced a single group id")
	}
}
