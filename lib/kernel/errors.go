// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import "errors"

var (
	// ErrNotRunning is returned by operations that need a live kernel
	// process when none exists or it has exited.
	ErrNotRunning = errors.New("kernel process is not running")

	// ErrSignalUnsupported is returned on platforms without job
	// control signals.
	ErrSignalUnsupported = errors.New("process signals are not supported on this platform")

	// ErrNotReady is returned when the kernel did not answer
	// kernel_info_request within the ready timeout.
	ErrNotReady = errors.New("kernel did not become ready")

	// ErrClosed is returned after Shutdown.
	ErrClosed = errors.New("kernel is shut down")
)
