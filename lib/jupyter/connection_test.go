// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"os"
	"testing"
)

func TestNewConnectionInfoDistinctPorts(t *testing.T) {
	info, err := NewConnectionInfo("127.0.0.1", "key", "python3")
	if err != nil {
		t.Fatalf("NewConnectionInfo: %v", err)
	}
	seen := map[int]bool{}
	for _, port := range []int{info.ShellPort, info.IOPubPort, info.StdinPort, info.ControlPort, info.HeartbeatPort} {
		if port == 0 {
			t.Fatal("port not allocated")
		}
		if seen[port] {
			t.Fatalf("port %d allocated twice", port)
		}
		seen[port] = true
	}
	if got, want := info.Endpoint(Shell), "tcp://127.0.0.1:"; got[:len(want)] != want {
		t.Fatalf("Endpoint(Shell) = %q", got)
	}
}

func TestWriteConnectionFile(t *testing.T) {
	directory := t.TempDir()
	info := &ConnectionInfo{
		IP:              "127.0.0.1",
		Transport:       "tcp",
		ShellPort:       5001,
		IOPubPort:       5002,
		StdinPort:       5003,
		ControlPort:     5004,
		HeartbeatPort:   5005,
		Key:             "abc",
		SignatureScheme: "hmac-sha256",
	}
	path, err := WriteConnectionFile(directory, info)
	if err != nil {
		t.Fatalf("WriteConnectionFile: %v", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := stat.Mode().Perm(); mode != 0o600 {
		t.Fatalf("mode = %o, want 600", mode)
	}

	read, err := ReadConnectionFile(path)
	if err != nil {
		t.Fatalf("ReadConnectionFile: %v", err)
	}
	if *read != *info {
		t.Fatalf("read back %+v, want %+v", read, info)
	}
	if got := read.Endpoint(Control); got != "tcp://127.0.0.1:5004" {
		t.Fatalf("Endpoint(Control) = %q", got)
	}
}
