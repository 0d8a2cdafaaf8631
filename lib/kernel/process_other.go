// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package kernel

import (
	"fmt"
	"os"
	"os/exec"
)

func configureProcess(cmd *exec.Cmd) {}

func interruptProcess(pid int) error { return ErrSignalUnsupported }

func stopProcess(pid int) error { return ErrSignalUnsupported }

func continueProcess(pid int) error { return ErrSignalUnsupported }

func terminateProcess(pid int) error { return killProcess(pid) }

func killProcess(pid int) error {
	if pid <= 0 {
		return ErrNotRunning
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return ErrNotRunning
	}
	if err := process.Kill(); err != nil {
		return fmt.Errorf("killing %d: %w", pid, err)
	}
	return nil
}
