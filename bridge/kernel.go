// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"

	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

// Kernel is the kernel-facing capability the loop drives.
// *kernel.Kernel implements it for real Jupyter kernels. All methods
// except Wake are called from the loop goroutine only.
type Kernel interface {
	// Execute sends an execute_request and returns its msg_id.
	Execute(code string, allowStdin bool) (string, error)

	// Inspect sends an inspect_request, on control when useControl is
	// set, and returns its msg_id.
	Inspect(code string, cursorPos, detailLevel int, useControl bool) (string, error)

	// SendInput answers the kernel's pending input_request.
	SendInput(text string) error

	// Poll returns the next queued message on channel without blocking.
	Poll(channel jupyter.Channel) (*jupyter.Message, bool)

	// Wake receives when a message arrives or the process exits.
	Wake() <-chan struct{}

	// Done is closed when the kernel process exits.
	Done() <-chan struct{}

	// Err describes the process exit once Done is closed.
	Err() error

	Interrupt() error
	Pause() error
	Resume() error

	// Restart replaces the kernel process and channels and waits for
	// the new process to be ready.
	Restart(ctx context.Context) error

	// Shutdown stops the kernel, best effort. It is idempotent.
	Shutdown()
}

// Launcher starts kernels for the start command.
type Launcher interface {
	// Launch starts kernelName with workingDirectory (empty for the
	// bridge's own) and returns once it is ready.
	Launch(ctx context.Context, kernelName, workingDirectory string) (Kernel, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, kernelName, workingDirectory string) (Kernel, error)

func (f LauncherFunc) Launch(ctx context.Context, kernelName, workingDirectory string) (Kernel, error) {
	return f(ctx, kernelName, workingDirectory)
}
