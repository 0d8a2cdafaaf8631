// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Outbox buffers events produced during one loop tick. It is owned by
// the loop goroutine and not safe for concurrent use.
type Outbox struct {
	events []Event
}

// Emit appends an event to the pending batch.
func (o *Outbox) Emit(event Event) {
	o.events = append(o.events, event)
}

// Len returns the number of pending events.
func (o *Outbox) Len() int {
	return len(o.events)
}

// Flush encodes every pending event as one line and writes the batch
// to w with a single Write. It returns the encoded lines (without
// their trailing newlines) in write order. An event that cannot be
// encoded is left out of the batch and reported in the returned
// error; the remaining events are still written. The batch is
// cleared even when the write fails.
func (o *Outbox) Flush(w io.Writer) ([][]byte, error) {
	if len(o.events) == 0 {
		return nil, nil
	}
	events := o.events
	o.events = nil

	var batch bytes.Buffer
	var lines [][]byte
	var encodeErrors []error
	for _, event := range events {
		line, err := encodeEvent(event)
		if err != nil {
			encodeErrors = append(encodeErrors, fmt.Errorf("encoding %s event: %w", event.Type, err))
			continue
		}
		batch.Write(line)
		batch.WriteByte('\n')
		lines = append(lines, line)
	}

	if batch.Len() > 0 {
		if _, err := w.Write(batch.Bytes()); err != nil {
			return lines, errors.Join(append(encodeErrors, fmt.Errorf("writing events: %w", err))...)
		}
	}
	return lines, errors.Join(encodeErrors...)
}

// encodeEvent encodes one event without HTML escaping, so '<', '>',
// and '&' in kernel output reach the client as-is.
func encodeEvent(event Event) ([]byte, error) {
	return marshal(event)
}
