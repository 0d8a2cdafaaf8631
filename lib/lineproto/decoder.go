// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultMaxLineBytes bounds a single command line. Execute commands
// carry whole notebook cells, so the limit is generous.
const DefaultMaxLineBytes = 16 << 20

// ProtocolError reports a client line that could not be decoded into
// a command. It never carries a sequence number: the line was not
// understood well enough to find one.
type ProtocolError struct {
	// Line is the offending input, truncated for logging.
	Line string

	// Err is the underlying parse failure.
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed command %q: %v", e.Line, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Decoded is one complete input line: either a Command or the
// ProtocolError explaining why the line was rejected.
type Decoded struct {
	Command Command

	// Raw is the trimmed line as received, for transcripts.
	Raw []byte

	Err error
}

// Decoder splits a byte stream into commands on newline boundaries.
// The zero value is ready to use with DefaultMaxLineBytes.
type Decoder struct {
	// MaxLineBytes bounds a single line, terminated or not. Zero
	// selects DefaultMaxLineBytes.
	MaxLineBytes int

	buffer      []byte
	overflowing bool
}

func (d *Decoder) maxLineBytes() int {
	if d.MaxLineBytes > 0 {
		return d.MaxLineBytes
	}
	return DefaultMaxLineBytes
}

// Feed appends chunk to the internal buffer and returns every line
// completed by it, in input order. Bytes after the last newline stay
// buffered for the next call. Blank lines produce nothing.
func (d *Decoder) Feed(chunk []byte) []Decoded {
	d.buffer = append(d.buffer, chunk...)

	var decoded []Decoded
	for {
		newline := bytes.IndexByte(d.buffer, '\n')
		if newline < 0 {
			break
		}
		line := d.buffer[:newline]
		d.buffer = d.buffer[newline+1:]

		if d.overflowing {
			// Tail of an oversized line that was already reported.
			d.overflowing = false
			continue
		}
		if len(line) > d.maxLineBytes() {
			decoded = append(decoded, d.oversized(line))
			continue
		}
		if result, ok := decodeLine(line); ok {
			decoded = append(decoded, result)
		}
	}

	if len(d.buffer) > d.maxLineBytes() {
		if !d.overflowing {
			decoded = append(decoded, d.oversized(d.buffer))
		}
		d.overflowing = true
		d.buffer = d.buffer[:0]
	}

	// Release the backing array once it has been fully consumed so a
	// single large cell does not pin memory for the session.
	if len(d.buffer) == 0 {
		d.buffer = nil
	}
	return decoded
}

func (d *Decoder) oversized(line []byte) Decoded {
	return Decoded{Err: &ProtocolError{
		Line: preview(line),
		Err:  fmt.Errorf("line exceeds %d bytes", d.maxLineBytes()),
	}}
}

// Pending returns the number of buffered bytes not yet terminated by
// a newline.
func (d *Decoder) Pending() int {
	return len(d.buffer)
}

func decodeLine(line []byte) (Decoded, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return Decoded{}, false
	}
	raw := append([]byte(nil), trimmed...)

	var command Command
	if err := json.Unmarshal(raw, &command); err != nil {
		return Decoded{Raw: raw, Err: &ProtocolError{Line: preview(raw), Err: err}}, true
	}
	if command.Type == "" {
		return Decoded{Raw: raw, Err: &ProtocolError{
			Line: preview(raw),
			Err:  fmt.Errorf("missing \"type\" field"),
		}}, true
	}
	return Decoded{Command: command, Raw: raw}, true
}

func preview(line []byte) string {
	const limit = 120
	text := strings.ToValidUTF8(string(line), "�")
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
