// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// openInput returns stdin registered with the runtime poller, so that
// closing it wakes a pending Read. A plain os.Stdin read on a pipe or
// terminal cannot be interrupted.
func openInput(logger *slog.Logger) io.Reader {
	if err := unix.SetNonblock(unix.Stdin, true); err != nil {
		logger.Debug("stdin left in blocking mode", "error", err)
		return os.Stdin
	}
	return &stdinFile{File: os.NewFile(uintptr(unix.Stdin), "/dev/stdin")}
}

type stdinFile struct {
	*os.File
}

// Close puts the descriptor back in blocking mode before closing it:
// the flag lives on the open file description, which the parent
// process shares.
func (s *stdinFile) Close() error {
	unix.SetNonblock(unix.Stdin, false)
	return s.File.Close()
}
