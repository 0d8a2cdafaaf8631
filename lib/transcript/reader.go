// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/kernelbridge/lib/codec"
)

// Reader reads records back from a transcript file.
type Reader struct {
	file         *os.File
	decompressed io.ReadCloser
	decoder      *codec.Decoder
}

// Open opens a transcript for reading, detecting compression from the
// extension, and checks the format header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %q: %w", path, err)
	}
	decompressed, err := decompressor(bufio.NewReader(file), CompressionForPath(path))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("transcript %q: %w", path, err)
	}
	reader := &Reader{
		file:         file,
		decompressed: decompressed,
		decoder:      codec.NewDecoder(decompressed),
	}
	if err := reader.readHeader(); err != nil {
		reader.Close()
		return nil, fmt.Errorf("transcript %q: %w", path, err)
	}
	return reader, nil
}

// readHeader consumes the first item. It is decoded from its raw bytes
// so that any undecodable start of file is reported as ErrNotTranscript.
func (r *Reader) readHeader() error {
	var raw codec.RawMessage
	if err := r.decoder.Decode(&raw); err != nil {
		return ErrNotTranscript
	}
	var h header
	if err := codec.Unmarshal(raw, &h); err != nil || h.Format != formatName {
		return ErrNotTranscript
	}
	if h.Version != formatVersion {
		return fmt.Errorf("unsupported transcript version %d (this build reads version %d)", h.Version, formatVersion)
	}
	return nil
}

// Next returns the next record, or io.EOF after the last one. A
// transcript cut short by a crash ends with io.ErrUnexpectedEOF.
func (r *Reader) Next() (Record, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("decoding transcript record: %w", err)
	}
	return record, nil
}

// Close releases the file.
func (r *Reader) Close() error {
	r.decompressed.Close()
	return r.file.Close()
}

// ReadAll reads every record in the transcript at path.
func ReadAll(path string) ([]Record, error) {
	reader, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var records []Record
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}
