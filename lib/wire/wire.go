// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/codec"
	"github.com/bureau-foundation/qrcloak/lib/format"
)

// Format selects the serialization.
type Format uint8

const (
	JSON Format = iota
	CBOR
)

var formatNames = [...]string{
	JSON: "json",
	CBOR: "cbor",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("unknown(%d)", uint8(f))
}

// ParseFormat parses "json" or "cbor".
func ParseFormat(name string) (Format, error) {
	for index, candidate := range formatNames {
		if candidate == name {
			return Format(index), nil
		}
	}
	return 0, fmt.Errorf("unknown wire format %q (want json or cbor)", name)
}

func (f Format) MarshalText() ([]byte, error) {
	if int(f) >= len(formatNames) {
		return nil, fmt.Errorf("cannot marshal wire format %d", uint8(f))
	}
	return []byte(formatNames[f]), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Format) marshal(value any, pretty bool) ([]byte, error) {
	switch f {
	case JSON:
		if pretty {
			return json.MarshalIndent(value, "", "  ")
		}
		return json.Marshal(value)
	case CBOR:
		return codec.Marshal(value)
	default:
		return nil, fmt.Errorf("unsupported wire format %s", f)
	}
}

func (f Format) unmarshal(data []byte, value any) error {
	switch f {
	case JSON:
		return json.Unmarshal(data, value)
	case CBOR:
		return codec.Unmarshal(data, value)
	default:
		return fmt.Errorf("unsupported wire format %s", f)
	}
}

// Options configure an Encoder.
type Options struct {
	Format Format

	// Pretty indents JSON output. CBOR ignores it.
	Pretty bool

	// Merge encodes all payloads into one value. Otherwise each
	// payload gets its own output, one per QR code.
	Merge bool
}

// Encoder serializes payloads.
type Encoder struct {
	Options Options
}

// Encode serializes payloads. With Merge set the result holds exactly
// one value; otherwise it holds one value per payload, in order.
func (e Encoder) Encode(payloads format.OneOrMore[format.Payload]) (format.OneOrMore[[]byte], error) {
	if payloads.Len() == 0 {
		return format.OneOrMore[[]byte]{}, format.ErrEmpty
	}

	if e.Options.Merge {
		encoded, err := e.Options.Format.marshal(payloads, e.Options.Pretty)
		if err != nil {
			return format.OneOrMore[[]byte]{}, fmt.Errorf("encoding payloads: %w", err)
		}
		return format.One(encoded), nil
	}

	outputs := make([][]byte, 0, payloads.Len())
	for index, payload := range payloads.Items() {
		encoded, err := e.Options.Format.marshal(payload, e.Options.Pretty)
		if err != nil {
			return format.OneOrMore[[]byte]{}, fmt.Errorf("encoding payload %d: %w", index, err)
		}
		outputs = append(outputs, encoded)
	}
	return format.NewOneOrMore(outputs)
}

// DecodeError reports input that is not a payload or payload array.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s payload: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InputError locates a DecodeAll failure.
type InputError struct {
	Index int
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %d: %v", e.Index, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Decoder parses payloads.
type Decoder struct {
	Format Format
}

// Decode parses one bare payload or a non-empty array of payloads.
func (d Decoder) Decode(data []byte) ([]format.Payload, error) {
	var payloads format.OneOrMore[format.Payload]
	if err := d.Format.unmarshal(data, &payloads); err != nil {
		return nil, &DecodeError{Format: d.Format, Err: err}
	}
	return payloads.Items(), nil
}

// DecodeAll decodes each input independently. Payloads from every
// decodable input are returned in input order; each error is an
// *InputError naming the input that failed, so one bad scan never
// loses the rest of a batch.
func (d Decoder) DecodeAll(inputs [][]byte) ([]format.Payload, []error) {
	var payloads []format.Payload
	var errs []error
	for index, input := range inputs {
		decoded, err := d.Decode(input)
		if err != nil {
			errs = append(errs, &InputError{Index: index, Err: err})
			continue
		}
		payloads = append(payloads, decoded...)
	}
	return payloads, errs
}
