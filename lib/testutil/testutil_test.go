// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// recordingT captures Fatalf instead of stopping the test. Fatalf
// panics so that RequireReceive does not run on past it.
type recordingT struct {
	message string
}

type fatal struct{}

func (r *recordingT) Helper() {}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(fatal{})
}

func catchFatal(r *recordingT, body func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			if _, ok := recovered.(fatal); !ok {
				panic(recovered)
			}
		}
	}()
	body()
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 42
	if got := RequireReceive(t, ch, time.Second, "buffered value"); got != 42 {
		t.Fatalf("RequireReceive = %d, want 42", got)
	}
}

func TestRequireReceiveTimeout(t *testing.T) {
	recorder := &recordingT{}
	catchFatal(recorder, func() {
		RequireReceive(recorder, make(chan int), 10*time.Millisecond, "waiting for %s", "nothing")
	})
	if !strings.Contains(recorder.message, "timed out") || !strings.Contains(recorder.message, "waiting for nothing") {
		t.Fatalf("failure message = %q", recorder.message)
	}
}

func TestRequireReceiveClosed(t *testing.T) {
	ch := make(chan string)
	close(ch)
	recorder := &recordingT{}
	catchFatal(recorder, func() {
		RequireReceive(recorder, ch, time.Second)
	})
	if !strings.Contains(recorder.message, "channel closed") || !strings.Contains(recorder.message, "(no message)") {
		t.Fatalf("failure message = %q", recorder.message)
	}
}

func TestWriteFile(t *testing.T) {
	directory := t.TempDir()
	path := WriteFile(t, directory, "kernels/fake/kernel.json", `{"argv":["x"]}`)
	if path != filepath.Join(directory, "kernels", "fake", "kernel.json") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"argv":["x"]}` {
		t.Fatalf("content = %q", data)
	}
}
