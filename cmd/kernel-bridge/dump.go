// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bureau-foundation/kernelbridge/lib/process"
	"github.com/bureau-foundation/kernelbridge/lib/transcript"
)

// dumpEntry is one transcript record as printed by dump-transcript.
// Line holds the protocol line itself when it is valid JSON; anything
// else (a malformed command) is printed as Text.
type dumpEntry struct {
	Time      string          `json:"time"`
	Direction string          `json:"direction"`
	Line      json.RawMessage `json:"line,omitempty"`
	Text      string          `json:"text,omitempty"`
}

func dumpTranscript(args []string, out io.Writer) error {
	if len(args) != 1 {
		return process.Usage(errors.New("usage: kernel-bridge dump-transcript <path>"))
	}
	reader, err := transcript.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		entry := dumpEntry{
			Time:      time.Unix(0, record.UnixNano).UTC().Format(time.RFC3339Nano),
			Direction: record.Direction.String(),
		}
		if json.Valid(record.Line) {
			entry.Line = json.RawMessage(record.Line)
		} else {
			entry.Text = string(record.Line)
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
}
