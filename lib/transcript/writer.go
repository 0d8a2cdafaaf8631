// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bureau-foundation/kernelbridge/lib/clock"
	"github.com/bureau-foundation/kernelbridge/lib/codec"
)

// Writer appends records to a transcript file. It is safe for
// concurrent use.
type Writer struct {
	mutex      sync.Mutex
	file       *os.File
	buffered   *bufio.Writer
	compressed io.WriteCloser
	encoder    *codec.Encoder
	clock      clock.Clock
	closed     bool
	count      int
}

// Create creates (or truncates) a transcript at path, compressed
// according to its extension, and writes the format header.
func Create(path string, clk clock.Clock) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating transcript %q: %w", path, err)
	}
	buffered := bufio.NewWriter(file)
	compressed, err := compressor(buffered, CompressionForPath(path))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("transcript %q: %w", path, err)
	}
	encoded, err := codec.Marshal(header{Format: formatName, Version: formatVersion})
	if err == nil {
		_, err = compressed.Write(encoded)
	}
	if err != nil {
		compressed.Close()
		file.Close()
		return nil, fmt.Errorf("writing transcript header to %q: %w", path, err)
	}
	return &Writer{
		file:       file,
		buffered:   buffered,
		compressed: compressed,
		encoder:    codec.NewEncoder(compressed),
		clock:      clk,
	}, nil
}

// Record appends one line. The line is copied by the encoder before
// Record returns.
func (w *Writer) Record(direction Direction, line []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return errors.New("transcript is closed")
	}
	record := Record{
		UnixNano:  w.clock.Now().UnixNano(),
		Direction: direction,
		Line:      line,
	}
	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("encoding transcript record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.count
}

// Close flushes the compressed stream and closes the file. Close is
// idempotent.
func (w *Writer) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := w.compressed.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing compressor: %w", err))
	}
	if err := w.buffered.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing transcript: %w", err))
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing transcript: %w", err))
	}
	return errors.Join(errs...)
}
