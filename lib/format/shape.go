// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/codec"
)

// Payloads are untagged on the wire, so decoding inspects the keys of
// the serialized map before committing to a variant. Key sets are
// closed: a tail body presented at the top level must not be mistaken
// for a complete payload.
var (
	completeKeys = keySet{required: []string{"data"}, optional: []string{"encryption", "compression"}}
	headKeys     = keySet{required: []string{"data", "index"}, optional: []string{"encryption", "compression"}}
	tailKeys     = keySet{required: []string{"data", "index"}}
)

type keySet struct {
	required []string
	optional []string
}

func (k keySet) check(fields map[string][]byte) error {
	for _, name := range k.required {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("missing field %q", name)
		}
	}
	for name := range fields {
		if !k.allows(name) {
			return fmt.Errorf("unexpected field %q", name)
		}
	}
	return nil
}

func (k keySet) allows(name string) bool {
	for _, candidate := range k.required {
		if candidate == name {
			return true
		}
	}
	for _, candidate := range k.optional {
		if candidate == name {
			return true
		}
	}
	return false
}

// serialization abstracts the two wire formats for shape detection.
type serialization struct {
	name      string
	fields    func(data []byte) (map[string][]byte, error)
	unmarshal func(data []byte, v any) error
}

var jsonSerialization = serialization{
	name: "JSON",
	fields: func(data []byte) (map[string][]byte, error) {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, ErrUnknownShape
		}
		fields := make(map[string][]byte, len(raw))
		for name, value := range raw {
			fields[name] = value
		}
		return fields, nil
	},
	unmarshal: json.Unmarshal,
}

var cborSerialization = serialization{
	name: "CBOR",
	fields: func(data []byte) (map[string][]byte, error) {
		var raw map[string]codec.RawMessage
		if err := codec.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, ErrUnknownShape
		}
		fields := make(map[string][]byte, len(raw))
		for name, value := range raw {
			fields[name] = value
		}
		return fields, nil
	},
	unmarshal: codec.Unmarshal,
}

func (s serialization) decodePayload(data []byte) (Payload, error) {
	fields, err := s.fields(data)
	if err != nil {
		return Payload{}, err
	}

	_, hasHead := fields["head"]
	_, hasTail := fields["tail"]
	if hasHead || hasTail {
		partial, err := s.decodePartialFields(fields)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Partial: &partial}, nil
	}

	if _, hasData := fields["data"]; hasData {
		if err := completeKeys.check(fields); err != nil {
			return Payload{}, fmt.Errorf("complete payload: %w", err)
		}
		var complete CompletePayload
		if err := s.unmarshal(data, &complete); err != nil {
			return Payload{}, fmt.Errorf("complete payload: %w", err)
		}
		return Payload{Complete: &complete}, nil
	}

	return Payload{}, ErrUnknownShape
}

func (s serialization) decodePartial(data []byte) (PartialPayload, error) {
	fields, err := s.fields(data)
	if err != nil {
		return PartialPayload{}, err
	}
	return s.decodePartialFields(fields)
}

func (s serialization) decodePartialFields(fields map[string][]byte) (PartialPayload, error) {
	if len(fields) != 1 {
		return PartialPayload{}, errors.New("partial payload must have exactly one of \"head\" or \"tail\"")
	}

	if body, ok := fields["head"]; ok {
		inner, err := s.fields(body)
		if err != nil {
			return PartialPayload{}, fmt.Errorf("head: %w", err)
		}
		if err := headKeys.check(inner); err != nil {
			return PartialPayload{}, fmt.Errorf("head: %w", err)
		}
		var head PartialPayloadHead
		if err := s.unmarshal(body, &head); err != nil {
			return PartialPayload{}, fmt.Errorf("head: %w", err)
		}
		return PartialPayload{Head: &head}, nil
	}

	if body, ok := fields["tail"]; ok {
		inner, err := s.fields(body)
		if err != nil {
			return PartialPayload{}, fmt.Errorf("tail: %w", err)
		}
		if err := tailKeys.check(inner); err != nil {
			return PartialPayload{}, fmt.Errorf("tail: %w", err)
		}
		var tail PartialPayloadTail
		if err := s.unmarshal(body, &tail); err != nil {
			return PartialPayload{}, fmt.Errorf("tail: %w", err)
		}
		return PartialPayload{Tail: &tail}, nil
	}

	return PartialPayload{}, ErrUnknownShape
}

// partialFields has the same fields as PartialPayload without its
// marshaling methods.
type partialFields PartialPayload

func (p PartialPayload) checkVariant() error {
	if (p.Head == nil) == (p.Tail == nil) {
		return errors.New("partial payload must set exactly one of Head or Tail")
	}
	return nil
}

func (p PartialPayload) MarshalJSON() ([]byte, error) {
	if err := p.checkVariant(); err != nil {
		return nil, err
	}
	return json.Marshal(partialFields(p))
}

func (p *PartialPayload) UnmarshalJSON(data []byte) error {
	decoded, err := jsonSerialization.decodePartial(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (p PartialPayload) MarshalCBOR() ([]byte, error) {
	if err := p.checkVariant(); err != nil {
		return nil, err
	}
	return codec.Marshal(partialFields(p))
}

func (p *PartialPayload) UnmarshalCBOR(data []byte) error {
	decoded, err := cborSerialization.decodePartial(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (p Payload) variant() (any, error) {
	switch {
	case p.Complete != nil && p.Partial != nil:
		return nil, errors.New("payload must set exactly one of Complete or Partial")
	case p.Complete != nil:
		return *p.Complete, nil
	case p.Partial != nil:
		return *p.Partial, nil
	}
	return nil, errors.New("payload is empty")
}

func (p Payload) MarshalJSON() ([]byte, error) {
	value, err := p.variant()
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	decoded, err := jsonSerialization.decodePayload(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (p Payload) MarshalCBOR() ([]byte, error) {
	value, err := p.variant()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(value)
}

func (p *Payload) UnmarshalCBOR(data []byte) error {
	decoded, err := cborSerialization.decodePayload(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
