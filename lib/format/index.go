// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import "fmt"

// Index locates one partial payload within its split group. ID is
// shared by every part of the group, Size is the group's part count,
// and Index is this part's position.
type Index struct {
	ID    uint32 `json:"id"`
	Index uint32 `json:"index"`
	Size  uint32 `json:"size"`
}

// IsHead reports whether this is the first part of its group.
func (i Index) IsHead() bool {
	return i.Index == 0
}

// IsTail reports whether this is any part but the first.
func (i Index) IsTail() bool {
	return !i.IsHead()
}

// Valid reports whether the position lies inside the group.
func (i Index) Valid() bool {
	return i.Size > 0 && i.Index < i.Size
}

func (i Index) String() string {
	return fmt.Sprintf("%08x[%d/%d]", i.ID, i.Index, i.Size)
}
