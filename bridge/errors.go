// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/kernelbridge/lib/kernel"
	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
)

// CommandError is a failure handling a well-formed command.
type CommandError struct {
	Command lineproto.CommandType
	Seq     lineproto.Seq
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// LifecycleError is a start or restart that did not reach a ready
// kernel. The session is Stopped afterwards; the client must start
// again.
type LifecycleError struct {
	Op  string
	Err error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }

// SignalReason classifies a pause or resume failure.
type SignalReason int

const (
	// SignalUnsupported means the platform has no stop/continue signals.
	SignalUnsupported SignalReason = iota + 1

	// SignalNotRunning means there is no live kernel process.
	SignalNotRunning

	// SignalFailed is any other delivery failure.
	SignalFailed
)

func (r SignalReason) String() string {
	switch r {
	case SignalUnsupported:
		return "unsupported"
	case SignalNotRunning:
		return "not running"
	case SignalFailed:
		return "failed"
	default:
		return fmt.Sprintf("SignalReason(%d)", int(r))
	}
}

// SignalError is a pause or resume that could not be delivered. It is
// reported as pause_failed or resume_failed, never as an error event.
type SignalError struct {
	Op     string
	Reason SignalReason
	Err    error
}

func (e *SignalError) Error() string {
	switch e.Reason {
	case SignalUnsupported:
		return e.Op + " is not supported on this platform"
	case SignalNotRunning:
		return "kernel is not running"
	default:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
}

func (e *SignalError) Unwrap() error { return e.Err }

// signalError classifies an error from Kernel.Pause or Kernel.Resume.
func signalError(op string, err error) *SignalError {
	switch {
	case errors.Is(err, kernel.ErrSignalUnsupported):
		return &SignalError{Op: op, Reason: SignalUnsupported, Err: err}
	case errors.Is(err, kernel.ErrNotRunning), errors.Is(err, kernel.ErrClosed):
		return &SignalError{Op: op, Reason: SignalNotRunning, Err: err}
	default:
		return &SignalError{Op: op, Reason: SignalFailed, Err: err}
	}
}

// KernelError is an exception raised by code running in the kernel.
// The execution still completes with done.
type KernelError struct {
	Ename     string
	Evalue    string
	Traceback []string
}

func (e *KernelError) Error() string {
	return e.Ename + ": " + e.Evalue
}

// errorEvent converts a handler failure into the error event sent to
// the client.
func errorEvent(seq lineproto.Seq, err error) lineproto.Event {
	var (
		protocolError  *lineproto.ProtocolError
		lifecycleError *LifecycleError
		kernelError    *KernelError
	)
	switch {
	case errors.As(err, &kernelError):
		return lineproto.Error(seq, kernelError.Ename, kernelError.Evalue, strings.Join(kernelError.Traceback, "\n"))
	case errors.As(err, &protocolError):
		return lineproto.Error(nil, "ProtocolError", err.Error(), "")
	case errors.As(err, &lifecycleError):
		return lineproto.Error(seq, "LifecycleError", err.Error(), "")
	default:
		return lineproto.Error(seq, "CommandError", err.Error(), "")
	}
}
