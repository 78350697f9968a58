// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"

	"github.com/bureau-foundation/qrcloak/lib/codec"
)

// ErrEmpty is returned when a OneOrMore would hold no elements.
var ErrEmpty = errors.New("expected at least one element")

// OneOrMore is a non-empty sequence. It serializes a single element as
// a bare value and several elements as an array; decoding accepts
// either form. The zero value is not valid and only arises from
// failed construction.
//
// T must not itself serialize as an array, or the bare and array forms
// become ambiguous.
type OneOrMore[T any] struct {
	items []T
}

// NewOneOrMore wraps items, which must be non-empty. The slice is
// copied.
func NewOneOrMore[T any](items []T) (OneOrMore[T], error) {
	if len(items) == 0 {
		return OneOrMore[T]{}, ErrEmpty
	}
	return OneOrMore[T]{items: slices.Clone(items)}, nil
}

// One wraps a single element.
func One[T any](item T) OneOrMore[T] {
	return OneOrMore[T]{items: []T{item}}
}

// Items returns the elements. The returned slice must not be modified.
func (o OneOrMore[T]) Items() []T {
	return o.items
}

// Len returns the number of elements.
func (o OneOrMore[T]) Len() int {
	return len(o.items)
}

// First returns the first element. It panics on the zero value.
func (o OneOrMore[T]) First() T {
	return o.items[0]
}

// IsOne reports whether exactly one element is held.
func (o OneOrMore[T]) IsOne() bool {
	return len(o.items) == 1
}

func (o OneOrMore[T]) collapsed() (any, error) {
	switch len(o.items) {
	case 0:
		return nil, ErrEmpty
	case 1:
		return o.items[0], nil
	}
	return o.items, nil
}

func (o OneOrMore[T]) MarshalJSON() ([]byte, error) {
	value, err := o.collapsed()
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

func (o *OneOrMore[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmpty
		}
		o.items = items
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	o.items = []T{item}
	return nil
}

func (o OneOrMore[T]) MarshalCBOR() ([]byte, error) {
	value, err := o.collapsed()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(value)
}

// CBOR major types, stored in the top three bits of an item's initial
// byte.
const (
	cborMajorArray = 4
	cborMajorTag   = 6
)

func (o *OneOrMore[T]) UnmarshalCBOR(data []byte) error {
	if len(data) > 0 && data[0]>>5 == cborMajorTag {
		return errors.New("tagged CBOR item: expected a payload or an array of payloads")
	}
	if len(data) > 0 && data[0]>>5 == cborMajorArray {
		var items []T
		if err := codec.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmpty
		}
		o.items = items
		return nil
	}

	var item T
	if err := codec.Unmarshal(data, &item); err != nil {
		return err
	}
	o.items = []T{item}
	return nil
}
