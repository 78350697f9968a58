// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/bureau-foundation/qrcloak/lib/format"
)

// GroupKey identifies a split group. Parts only join a group when both
// the id and the declared size agree.
type GroupKey struct {
	ID   uint32 `json:"id"`
	Size uint32 `json:"size"`
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%08x/%d", k.ID, k.Size)
}

func compareKeys(a, b GroupKey) int {
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	return cmp.Compare(a.Size, b.Size)
}

// maxListedMissing bounds GroupStatus.Missing. A hostile part can
// declare a group of four billion.
const maxListedMissing = 32

// GroupStatus describes one incomplete group.
type GroupStatus struct {
	Key      GroupKey `json:"key"`
	Received uint32   `json:"received"`

	// Missing lists up to 32 absent indices in ascending order.
	// MissingCount is the full count.
	Missing      []uint32 `json:"missing"`
	MissingCount uint32   `json:"missing_count"`
}

// group holds the received parts of one split group. Slots are sparse,
// so memory follows what arrived rather than what the head declares.
type group struct {
	slots map[uint32]format.PartialPayload
}

func (g *group) clone() *group {
	return &group{slots: maps.Clone(g.slots)}
}

// UnmergedPayloads is the merge state carried between Merge calls:
// incomplete groups, parts that contradict their own index, and parts
// displaced by a conflicting duplicate. The zero value is an empty
// state ready for use.
type UnmergedPayloads struct {
	groups        map[GroupKey]*group
	misconfigured []format.PartialPayload
	conflicts     []format.PartialPayload
}

// Clone returns a deep copy of the state. Part data is shared, since
// nothing mutates it.
func (u UnmergedPayloads) Clone() UnmergedPayloads {
	clone := UnmergedPayloads{
		misconfigured: slices.Clone(u.misconfigured),
		conflicts:     slices.Clone(u.conflicts),
	}
	if len(u.groups) > 0 {
		clone.groups = make(map[GroupKey]*group, len(u.groups))
		for key, group := range u.groups {
			clone.groups[key] = group.clone()
		}
	}
	return clone
}

// Len returns the number of incomplete groups.
func (u UnmergedPayloads) Len() int {
	return len(u.groups)
}

// IsEmpty reports whether the state holds nothing at all.
func (u UnmergedPayloads) IsEmpty() bool {
	return len(u.groups) == 0 && len(u.misconfigured) == 0 && len(u.conflicts) == 0
}

// WithoutDiagnostics returns a copy holding only the incomplete
// groups. Misconfigured parts and conflicts describe what one run
// received; they are dropped before state is carried into the next.
func (u UnmergedPayloads) WithoutDiagnostics() UnmergedPayloads {
	clone := u.Clone()
	clone.misconfigured = nil
	clone.conflicts = nil
	return clone
}

// Keys returns the keys of the incomplete groups in ascending order.
func (u UnmergedPayloads) Keys() []GroupKey {
	return slices.SortedFunc(maps.Keys(u.groups), compareKeys)
}

// Groups describes every incomplete group, ordered by key.
func (u UnmergedPayloads) Groups() []GroupStatus {
	statuses := make([]GroupStatus, 0, len(u.groups))
	for _, key := range u.Keys() {
		slots := u.groups[key].slots
		status := GroupStatus{
			Key:          key,
			Received:     uint32(len(slots)),
			MissingCount: key.Size - uint32(len(slots)),
		}
		for index := uint32(0); index < key.Size && len(status.Missing) < maxListedMissing; index++ {
			if _, ok := slots[index]; !ok {
				status.Missing = append(status.Missing, index)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Parts returns the received parts of the group in index order.
func (u UnmergedPayloads) Parts(key GroupKey) []format.PartialPayload {
	group, ok := u.groups[key]
	if !ok {
		return nil
	}
	parts := make([]format.PartialPayload, 0, len(group.slots))
	for _, index := range slices.Sorted(maps.Keys(group.slots)) {
		parts = append(parts, group.slots[index])
	}
	return parts
}

// Misconfigured returns the parts whose shape contradicts their index,
// in arrival order.
func (u UnmergedPayloads) Misconfigured() []format.PartialPayload {
	return slices.Clone(u.misconfigured)
}

// Conflicts returns parts that were displaced by a later part with the
// same key and index but different content, in arrival order.
func (u UnmergedPayloads) Conflicts() []format.PartialPayload {
	return slices.Clone(u.conflicts)
}

// Discard drops an incomplete group and reports whether it existed.
func (u *UnmergedPayloads) Discard(key GroupKey) bool {
	if _, ok := u.groups[key]; !ok {
		return false
	}
	delete(u.groups, key)
	return true
}

// add files one part into its group, or into misconfigured.
func (u *UnmergedPayloads) add(part format.PartialPayload) {
	if part.Misconfigured() {
		u.misconfigured = append(u.misconfigured, part)
		return
	}

	position := part.Index()
	key := GroupKey{ID: position.ID, Size: position.Size}
	if u.groups == nil {
		u.groups = make(map[GroupKey]*group)
	}
	current, ok := u.groups[key]
	if !ok {
		current = &group{slots: make(map[uint32]format.PartialPayload)}
		u.groups[key] = current
	}

	if existing, ok := current.slots[position.Index]; ok {
		if existing.Equal(part) {
			return
		}
		u.conflicts = append(u.conflicts, existing)
	}
	current.slots[position.Index] = part
}

// sweep removes every complete group and returns the reassembled
// payloads with their keys, in key order.
func (u *UnmergedPayloads) sweep() ([]format.CompletePayload, []GroupKey) {
	var payloads []format.CompletePayload
	var keys []GroupKey
	for _, key := range u.Keys() {
		current := u.groups[key]
		if uint64(len(current.slots)) != uint64(key.Size) {
			continue
		}
		payloads = append(payloads, current.concatenate(key))
		keys = append(keys, key)
		delete(u.groups, key)
	}
	return payloads, keys
}

// concatenate joins a full group. Index 0 always holds a head, because
// a tail at index 0 is misconfigured and never reaches a group.
func (g *group) concatenate(key GroupKey) format.CompletePayload {
	total := 0
	for _, part := range g.slots {
		total += len(part.Data())
	}

	data := make([]byte, 0, total)
	for index := range key.Size {
		part, ok := g.slots[index]
		if !ok {
			panic(fmt.Sprintf("payload: full group %s has no part at index %d", key, index))
		}
		data = append(data, part.Data()...)
	}

	head := g.slots[0].Head
	return format.CompletePayload{
		Data:        data,
		Encryption:  head.Encryption,
		Compression: head.Compression,
	}
}

// MergeResult is the outcome of one Merge call.
type MergeResult struct {
	// Complete holds the complete payloads that passed straight
	// through, in arrival order, followed by the reassembled groups in
	// key order.
	Complete []format.CompletePayload

	// Completed holds the keys of the reassembled groups, matching the
	// tail of Complete.
	Completed []GroupKey

	// Pending is the state to pass to the next Merge call.
	Pending UnmergedPayloads
}

// Merge adds incoming payloads to pending and returns every payload
// that is now complete. pending is not modified. Payloads with neither
// variant set are ignored. A payload with both set passes its complete
// variant through and files its partial under Misconfigured.
//
// A part whose key and index are already filled is dropped when its
// content is identical. Otherwise it replaces the stored part, which is
// recorded in Conflicts.
func Merge(pending UnmergedPayloads, incoming ...format.Payload) MergeResult {
	state := pending.Clone()

	var complete []format.CompletePayload
	for _, payload := range incoming {
		switch {
		case payload.Complete != nil:
			complete = append(complete, *payload.Complete)
			if payload.Partial != nil {
				state.misconfigured = append(state.misconfigured, *payload.Partial)
			}
		case payload.Partial != nil:
			state.add(*payload.Partial)
		}
	}

	reassembled, keys := state.sweep()
	return MergeResult{
		Complete:  append(complete, reassembled...),
		Completed: keys,
		Pending:   state,
	}
}

// MergePartials merges partial payloads only.
func MergePartials(pending UnmergedPayloads, incoming ...format.PartialPayload) MergeResult {
	return Merge(pending, format.FromPartials(incoming)...)
}
