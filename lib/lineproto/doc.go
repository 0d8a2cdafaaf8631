// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lineproto implements the bridge's client protocol: one JSON
// object per line in each direction.
//
// Inbound, a [Decoder] accepts bytes as they arrive from the client,
// buffers until a newline is seen, skips blank lines, and parses each
// complete line into a [Command]. A malformed line yields a
// [*ProtocolError] in its place; decoding continues with the next line.
//
// Outbound, components buffer [Event] values in an [Outbox] during a
// loop tick. [Outbox.Flush] encodes them and writes the whole batch
// with a single Write call, so no partial object ever reaches the
// client and the number of write syscalls is one per tick.
//
// Text fields (stream text, tracebacks) are carried unchanged: ANSI
// escape sequences survive a round trip through the JSON encoding.
package lineproto
