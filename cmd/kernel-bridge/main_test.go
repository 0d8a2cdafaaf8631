// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/kernelbridge/lib/clock"
	"github.com/bureau-foundation/kernelbridge/lib/config"
	"github.com/bureau-foundation/kernelbridge/lib/process"
	"github.com/bureau-foundation/kernelbridge/lib/testutil"
	"github.com/bureau-foundation/kernelbridge/lib/transcript"
)

func TestDumpTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor.zst")
	writer, err := transcript.Create(path, clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	lines := []struct {
		direction transcript.Direction
		line      string
	}{
		{transcript.Inbound, `{"type":"execute","seq":1,"code":"1+1"}`},
		{transcript.Inbound, `not json`},
		{transcript.Outbound, `{"type":"result","seq":1,"value":"<2>"}`},
	}
	for _, entry := range lines {
		if err := writer.Record(entry.direction, []byte(entry.line)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var output bytes.Buffer
	if err := dumpTranscript([]string{path}, &output); err != nil {
		t.Fatalf("dumpTranscript: %v", err)
	}
	want := strings.Join([]string{
		`{"time":"2026-03-01T12:00:00Z","direction":"in","line":{"type":"execute","seq":1,"code":"1+1"}}`,
		`{"time":"2026-03-01T12:00:00Z","direction":"in","text":"not json"}`,
		`{"time":"2026-03-01T12:00:00Z","direction":"out","line":{"type":"result","seq":1,"value":"<2>"}}`,
	}, "\n") + "\n"
	if output.String() != want {
		t.Fatalf("dump =\n%s\nwant\n%s", output.String(), want)
	}
}

func TestDumpTranscriptUsage(t *testing.T) {
	if err := dumpTranscript(nil, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Fatalf("dumpTranscript without a path = %v, want a usage error", err)
	} else if code := process.ExitCode(err); code != process.ExitUsage {
		t.Fatalf("exit code = %d, want %d", code, process.ExitUsage)
	}
	missing := filepath.Join(t.TempDir(), "missing.cbor")
	if err := dumpTranscript([]string{missing}, &bytes.Buffer{}); err == nil {
		t.Fatal("dumpTranscript on a missing file succeeded")
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	directory := t.TempDir()
	path := testutil.WriteFile(t, directory, "kernel-bridge.yaml", `
kernel:
  default_name: ir
media:
  directory: `+filepath.Join(directory, "from-file")+`
logging:
  level: warn
`)

	cfg, err := loadConfig(options{configPath: path})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Kernel.DefaultName != "ir" || cfg.Logging.Level != "warn" {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	cfg, err = loadConfig(options{
		configPath:     path,
		kernelName:     "julia-1.10",
		mediaDirectory: filepath.Join(directory, "from-flag"),
		transcriptPath: filepath.Join(directory, "session.cbor"),
		verbose:        true,
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Kernel.DefaultName != "julia-1.10" {
		t.Errorf("default kernel = %q", cfg.Kernel.DefaultName)
	}
	if cfg.Media.Directory != filepath.Join(directory, "from-flag") {
		t.Errorf("media directory = %q", cfg.Media.Directory)
	}
	if cfg.Transcript.Path != filepath.Join(directory, "session.cbor") {
		t.Errorf("transcript path = %q", cfg.Transcript.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug from --verbose", cfg.Logging.Level)
	}
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	cfg, err := loadConfig(options{})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Kernel.DefaultName != "python3" {
		t.Fatalf("default kernel = %q, want python3", cfg.Kernel.DefaultName)
	}
}

func TestDumpEntryOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(dumpEntry{Time: "t", Direction: "in"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"time":"t","direction":"in"}` {
		t.Fatalf("entry = %s", data)
	}
}
