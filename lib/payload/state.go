// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/codec"
	"github.com/bureau-foundation/qrcloak/lib/format"
)

// stateDocument is the serialized form of UnmergedPayloads. Groups are
// a list sorted by key so that equal states encode identically.
type stateDocument struct {
	Groups        []groupDocument         `json:"groups,omitempty"`
	Misconfigured []format.PartialPayload `json:"misconfigured,omitempty"`
	Conflicts     []format.PartialPayload `json:"conflicts,omitempty"`
}

type groupDocument struct {
	ID    uint32                  `json:"id"`
	Size  uint32                  `json:"size"`
	Parts []format.PartialPayload `json:"parts"`
}

func (u UnmergedPayloads) document() stateDocument {
	document := stateDocument{
		Misconfigured: u.misconfigured,
		Conflicts:     u.conflicts,
	}
	for _, key := range u.Keys() {
		document.Groups = append(document.Groups, groupDocument{
			ID:    key.ID,
			Size:  key.Size,
			Parts: u.Parts(key),
		})
	}
	return document
}

// fromDocument rebuilds a state, rejecting groups that Merge could
// never have produced.
func fromDocument(document stateDocument) (UnmergedPayloads, error) {
	state := UnmergedPayloads{
		misconfigured: document.Misconfigured,
		conflicts:     document.Conflicts,
	}

	for _, entry := range document.Groups {
		key := GroupKey{ID: entry.ID, Size: entry.Size}
		if len(entry.Parts) == 0 {
			return UnmergedPayloads{}, fmt.Errorf("group %s has no parts", key)
		}
		if _, exists := state.groups[key]; exists {
			return UnmergedPayloads{}, fmt.Errorf("group %s listed twice", key)
		}

		current := &group{slots: make(map[uint32]format.PartialPayload, len(entry.Parts))}
		for _, part := range entry.Parts {
			position := part.Index()
			if part.Misconfigured() || position.ID != key.ID || position.Size != key.Size {
				return UnmergedPayloads{}, fmt.Errorf("group %s holds foreign part %s", key, position)
			}
			if _, exists := current.slots[position.Index]; exists {
				return UnmergedPayloads{}, fmt.Errorf("group %s holds index %d twice", key, position.Index)
			}
			current.slots[position.Index] = part
		}

		if state.groups == nil {
			state.groups = make(map[GroupKey]*group)
		}
		state.groups[key] = current
	}
	return state, nil
}

func (u UnmergedPayloads) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.document())
}

func (u *UnmergedPayloads) UnmarshalJSON(data []byte) error {
	var document stateDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return err
	}
	state, err := fromDocument(document)
	if err != nil {
		return err
	}
	*u = state
	return nil
}

func (u UnmergedPayloads) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(u.document())
}

func (u *UnmergedPayloads) UnmarshalCBOR(data []byte) error {
	var document stateDocument
	if err := codec.Unmarshal(data, &document); err != nil {
		return err
	}
	state, err := fromDocument(document)
	if err != nil {
		return err
	}
	*u = state
	return nil
}
