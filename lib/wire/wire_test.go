// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/qrcloak/lib/format"
)

func samplePayloads(t *testing.T) format.OneOrMore[format.Payload] {
	t.Helper()
	payloads, err := format.NewOneOrMore([]format.Payload{
		format.FromComplete(format.CompletePayload{Data: []byte("complete"), Compression: format.Gzip}),
		format.FromPartial(format.NewHead(format.PartialPayloadHead{
			Data:       []byte("he"),
			Encryption: format.AgeKey,
			Index:      format.Index{ID: 3, Index: 0, Size: 2},
		})),
		format.FromPartial(format.NewTail(format.PartialPayloadTail{
			Data:  []byte("ad"),
			Index: format.Index{ID: 3, Index: 1, Size: 2},
		})),
	})
	if err != nil {
		t.Fatalf("NewOneOrMore() error: %v", err)
	}
	return payloads
}

func equalPayloads(a, b []format.Payload) bool {
	if len(a) != len(b) {
		return false
	}
	for index := range a {
		if !a[index].Equal(b[index]) {
			return false
		}
	}
	return true
}

func TestRoundTrip(t *testing.T) {
	payloads := samplePayloads(t)

	for _, wireFormat := range []Format{JSON, CBOR} {
		for _, merge := range []bool{true, false} {
			for _, pretty := range []bool{true, false} {
				options := Options{Format: wireFormat, Merge: merge, Pretty: pretty}
				encoded, err := Encoder{Options: options}.Encode(payloads)
				if err != nil {
					t.Fatalf("%+v: Encode() error: %v", options, err)
				}

				wantOutputs := payloads.Len()
				if merge {
					wantOutputs = 1
				}
				if encoded.Len() != wantOutputs {
					t.Fatalf("%+v: Encode() produced %d outputs, want %d", options, encoded.Len(), wantOutputs)
				}

				decoded, errs := Decoder{Format: wireFormat}.DecodeAll(encoded.Items())
				if len(errs) != 0 {
					t.Fatalf("%+v: DecodeAll() errors: %v", options, errs)
				}
				if !equalPayloads(decoded, payloads.Items()) {
					t.Errorf("%+v: round trip = %+v", options, decoded)
				}
			}
		}
	}
}

func TestEncode_JSONShape(t *testing.T) {
	single := format.One(format.FromComplete(format.CompletePayload{Data: []byte("AB")}))

	encoded, err := Encoder{Options: Options{Format: JSON, Merge: true}}.Encode(single)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if got := string(encoded.First()); got != `{"data":"BB8"}` {
		t.Errorf("Encode() = %s, want {\"data\":\"BB8\"}", got)
	}

	merged, err := Encoder{Options: Options{Format: JSON, Merge: true}}.Encode(samplePayloads(t))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.HasPrefix(merged.First(), []byte("[")) {
		t.Errorf("merged output of several payloads should be an array: %s", merged.First())
	}

	pretty, err := Encoder{Options: Options{Format: JSON, Pretty: true}}.Encode(single)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !strings.Contains(string(pretty.First()), "\n  \"data\"") {
		t.Errorf("pretty output is not indented: %s", pretty.First())
	}
}

func TestEncode_CBORIsCompact(t *testing.T) {
	payload := format.One(format.FromComplete(format.CompletePayload{Data: bytes.Repeat([]byte{0xff}, 100)}))

	jsonOutput, err := Encoder{Options: Options{Format: JSON}}.Encode(payload)
	if err != nil {
		t.Fatalf("Encode(JSON) error: %v", err)
	}
	cborOutput, err := Encoder{Options: Options{Format: CBOR}}.Encode(payload)
	if err != nil {
		t.Fatalf("Encode(CBOR) error: %v", err)
	}
	if len(cborOutput.First()) >= len(jsonOutput.First()) {
		t.Errorf("CBOR %d bytes, JSON %d bytes", len(cborOutput.First()), len(jsonOutput.First()))
	}
}

func TestEncode_Empty(t *testing.T) {
	if _, err := (Encoder{}).Encode(format.OneOrMore[format.Payload]{}); !errors.Is(err, format.ErrEmpty) {
		t.Errorf("Encode(empty) error = %v, want ErrEmpty", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "hello"},
		{"empty array", "[]"},
		{"unknown shape", `{"foo":1}`},
		{"array with bad element", `[{"data":"BB8"},{"bar":2}]`},
		{"number", "42"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decoder{Format: JSON}.Decode([]byte(test.input))
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Decode(%s) error = %v, want *DecodeError", test.input, err)
			}
			if decodeErr.Format != JSON {
				t.Errorf("DecodeError.Format = %s", decodeErr.Format)
			}
		})
	}
}

func TestDecodeAll_SkipsBadInputs(t *testing.T) {
	inputs := [][]byte{
		[]byte(`{"data":"BB8"}`),
		[]byte(`garbage`),
		[]byte(`[{"data":"BB8"},{"data":"BB8","compression":"lz4"}]`),
	}

	payloads, errs := Decoder{Format: JSON}.DecodeAll(inputs)
	if len(payloads) != 3 {
		t.Errorf("DecodeAll() returned %d payloads, want 3", len(payloads))
	}
	if len(errs) != 1 {
		t.Fatalf("DecodeAll() returned %d errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "input 1") {
		t.Errorf("error %q does not name the failed input", errs[0])
	}
	var inputErr *InputError
	if !errors.As(errs[0], &inputErr) || inputErr.Index != 1 {
		t.Errorf("error = %v, want *InputError for input 1", errs[0])
	}
	var decodeErr *DecodeError
	if !errors.As(errs[0], &decodeErr) {
		t.Errorf("error = %v, want *DecodeError", errs[0])
	}
}

func TestParseFormat(t *testing.T) {
	for _, wireFormat := range []Format{JSON, CBOR} {
		parsed, err := ParseFormat(wireFormat.String())
		if err != nil || parsed != wireFormat {
			t.Errorf("ParseFormat(%q) = %v, %v", wireFormat.String(), parsed, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat should reject unknown formats")
	}
}
