// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/qrcloak/lib/base45"
)

// Data is a binary payload field. In JSON it is a Base45 string; in
// CBOR it is a raw byte string. The choice follows the serializer, not
// the value: Data implements json.Marshaler only, and the CBOR encoder
// falls back to its native byte string encoding.
type Data []byte

func (d Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(base45.Encode(d))
}

func (d *Data) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return fmt.Errorf("data field must be a base45 string: %w", err)
	}
	decoded, err := base45.Decode(text)
	if err != nil {
		return fmt.Errorf("data field: %w", err)
	}
	*d = decoded
	return nil
}
