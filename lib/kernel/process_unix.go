// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package kernel

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcess puts the kernel in its own process group so
// signals reach the kernel and any helpers it forks, and so a Ctrl-C
// aimed at the bridge's terminal does not reach the kernel directly.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalProcess(pid int, signal unix.Signal) error {
	if pid <= 0 {
		return ErrNotRunning
	}
	// Negative pid addresses the process group.
	err := unix.Kill(-pid, signal)
	if errors.Is(err, unix.ESRCH) {
		// Group gone; fall back to the leader in case it left the group.
		err = unix.Kill(pid, signal)
	}
	if errors.Is(err, unix.ESRCH) {
		return ErrNotRunning
	}
	if err != nil {
		return fmt.Errorf("sending %s to %d: %w", unix.SignalName(signal), pid, err)
	}
	return nil
}

func interruptProcess(pid int) error { return signalProcess(pid, unix.SIGINT) }

func stopProcess(pid int) error { return signalProcess(pid, unix.SIGSTOP) }

func continueProcess(pid int) error { return signalProcess(pid, unix.SIGCONT) }

// terminateProcess sends SIGTERM and then SIGCONT, so a paused kernel
// wakes up to handle the termination instead of holding it pending.
// A group that exits between the two signals is not an error.
func terminateProcess(pid int) error {
	if err := signalProcess(pid, unix.SIGTERM); err != nil {
		return err
	}
	if err := continueProcess(pid); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	return nil
}

func killProcess(pid int) error { return signalProcess(pid, unix.SIGKILL) }
