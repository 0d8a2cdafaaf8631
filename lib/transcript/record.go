// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"errors"
	"fmt"
)

// The first item of every transcript is a header naming the format.
const (
	formatName    = "kernel-bridge-transcript"
	formatVersion = 1
)

// ErrNotTranscript is returned by [Open] for a file that does not
// start with a transcript header.
var ErrNotTranscript = errors.New("not a kernel-bridge transcript")

type header struct {
	Format  string `cbor:"1,keyasint"`
	Version int    `cbor:"2,keyasint"`
}

// Direction says which way a line travelled.
type Direction uint8

const (
	// Inbound lines are client commands.
	Inbound Direction = 1

	// Outbound lines are events sent to the client.
	Outbound Direction = 2
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "in"
	case Outbound:
		return "out"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Record is one line of a session. Integer keys keep records compact;
// the key numbers are part of the file format.
type Record struct {
	// UnixNano is when the line was read or written.
	UnixNano int64 `cbor:"1,keyasint"`

	Direction Direction `cbor:"2,keyasint"`

	// Line is the line without its trailing newline.
	Line []byte `cbor:"3,keyasint"`
}
