// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Seq is a client-assigned sequence number. The bridge never
// interprets it: the exact JSON value the client sent is echoed back
// on every event for that request. The zero Seq encodes as null.
type Seq []byte

// IntSeq returns the Seq for an integer sequence number.
func IntSeq(n int) Seq {
	return Seq(strconv.Itoa(n))
}

// IsZero reports whether the seq is absent.
func (s Seq) IsZero() bool {
	return len(s) == 0
}

// Equal reports whether two seqs hold the same JSON text.
func (s Seq) Equal(other Seq) bool {
	return bytes.Equal(s, other)
}

// String returns the JSON text of the seq, or "null".
func (s Seq) String() string {
	if s.IsZero() {
		return "null"
	}
	return string(s)
}

// MarshalJSON implements json.Marshaler.
func (s Seq) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves the
// seq absent.
func (s *Seq) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, trimmed); err != nil {
		return err
	}
	*s = Seq(compacted.Bytes())
	return nil
}
