// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"errors"
)

// ErrUnknownShape is returned when a serialized value matches none of
// the payload shapes.
var ErrUnknownShape = errors.New("value matches neither a complete nor a partial payload")

// CompletePayload is payload content that is not, or is no longer,
// split across containers.
type CompletePayload struct {
	Data        Data            `json:"data"`
	Encryption  EncryptionSpec  `json:"encryption,omitzero"`
	Compression CompressionSpec `json:"compression,omitzero"`
}

// Equal reports whether both payloads carry the same bytes and tags.
func (c CompletePayload) Equal(other CompletePayload) bool {
	return c.Encryption == other.Encryption &&
		c.Compression == other.Compression &&
		bytes.Equal(c.Data, other.Data)
}

// PartialPayloadHead is the first part of a split group. It carries the
// encryption and compression tags for the whole group.
type PartialPayloadHead struct {
	Data        Data            `json:"data"`
	Encryption  EncryptionSpec  `json:"encryption,omitzero"`
	Compression CompressionSpec `json:"compression,omitzero"`
	Index       Index           `json:"index"`
}

// PartialPayloadTail is any part of a split group after the head.
type PartialPayloadTail struct {
	Data  Data  `json:"data"`
	Index Index `json:"index"`
}

// PartialPayload is one part of a split group: exactly one of Head and
// Tail is set.
type PartialPayload struct {
	Head *PartialPayloadHead `json:"head,omitempty"`
	Tail *PartialPayloadTail `json:"tail,omitempty"`
}

// NewHead wraps a head part.
func NewHead(head PartialPayloadHead) PartialPayload {
	return PartialPayload{Head: &head}
}

// NewTail wraps a tail part.
func NewTail(tail PartialPayloadTail) PartialPayload {
	return PartialPayload{Tail: &tail}
}

// Index returns the part's index. A payload with neither variant set
// returns the zero Index.
func (p PartialPayload) Index() Index {
	switch {
	case p.Head != nil:
		return p.Head.Index
	case p.Tail != nil:
		return p.Tail.Index
	}
	return Index{}
}

// Data returns the part's chunk of bytes.
func (p PartialPayload) Data() []byte {
	switch {
	case p.Head != nil:
		return p.Head.Data
	case p.Tail != nil:
		return p.Tail.Data
	}
	return nil
}

// Misconfigured reports whether the part's shape contradicts its own
// index: a head at a tail position, a tail at the head position, an
// index outside its group, or a union with zero or two variants set.
// Misconfigured parts are never grouped.
func (p PartialPayload) Misconfigured() bool {
	switch {
	case p.Head != nil && p.Tail != nil:
		return true
	case p.Head != nil:
		return !p.Head.Index.Valid() || p.Head.Index.IsTail()
	case p.Tail != nil:
		return !p.Tail.Index.Valid() || p.Tail.Index.IsHead()
	}
	return true
}

// Equal reports whether both parts have the same variant, index, data
// and (for heads) tags.
func (p PartialPayload) Equal(other PartialPayload) bool {
	switch {
	case p.Head != nil && other.Head != nil:
		return p.Tail == nil && other.Tail == nil &&
			p.Head.Index == other.Head.Index &&
			p.Head.Encryption == other.Head.Encryption &&
			p.Head.Compression == other.Head.Compression &&
			bytes.Equal(p.Head.Data, other.Head.Data)
	case p.Tail != nil && other.Tail != nil:
		return p.Head == nil && other.Head == nil &&
			p.Tail.Index == other.Tail.Index &&
			bytes.Equal(p.Tail.Data, other.Tail.Data)
	}
	return p.Head == nil && p.Tail == nil && other.Head == nil && other.Tail == nil
}

// Payload is the wire unit: exactly one of Complete and Partial is set.
type Payload struct {
	Complete *CompletePayload
	Partial  *PartialPayload
}

// FromComplete wraps a complete payload.
func FromComplete(complete CompletePayload) Payload {
	return Payload{Complete: &complete}
}

// FromPartial wraps a partial payload.
func FromPartial(partial PartialPayload) Payload {
	return Payload{Partial: &partial}
}

// FromPartials wraps every partial payload in order.
func FromPartials(partials []PartialPayload) []Payload {
	payloads := make([]Payload, len(partials))
	for index, partial := range partials {
		payloads[index] = FromPartial(partial)
	}
	return payloads
}

// Equal reports whether both payloads hold the same variant with equal
// contents.
func (p Payload) Equal(other Payload) bool {
	switch {
	case p.Complete != nil && other.Complete != nil:
		return p.Partial == nil && other.Partial == nil && p.Complete.Equal(*other.Complete)
	case p.Partial != nil && other.Partial != nil:
		return p.Complete == nil && other.Complete == nil && p.Partial.Equal(*other.Partial)
	}
	return false
}
