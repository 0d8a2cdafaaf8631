// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

// Kernel is a running Jupyter kernel. Apart from Wake, its methods
// must be called from a single goroutine.
type Kernel struct {
	launcher         *Launcher
	spec             *jupyter.KernelSpec
	workingDirectory string
	key              string
	session          *jupyter.Session

	wake    chan struct{}
	current *instance
	closed  bool

	// lastInputRequest is the parent for the next input_reply.
	lastInputRequest jupyter.Header
}

var closedChannel = func() chan struct{} {
	channel := make(chan struct{})
	close(channel)
	return channel
}()

// Name returns the kernelspec name.
func (k *Kernel) Name() string { return k.spec.Name }

// Pid returns the kernel process id, or 0 when no process is running.
func (k *Kernel) Pid() int {
	if k.current == nil {
		return 0
	}
	return k.current.pid
}

// Wake receives a value whenever a message lands in an inbox or the
// process exits. It may be read from any goroutine.
func (k *Kernel) Wake() <-chan struct{} { return k.wake }

func (k *Kernel) poke() {
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// Done is closed when the current kernel process exits. After Restart
// it refers to the new process.
func (k *Kernel) Done() <-chan struct{} {
	if k.current == nil {
		return closedChannel
	}
	return k.current.exited
}

// Err describes how the process exited. It is nil while the process
// is running.
func (k *Kernel) Err() error {
	if k.current == nil {
		return ErrNotRunning
	}
	if k.current.running() {
		return nil
	}
	return fmt.Errorf("kernel process exited: %s", exitDescription(k.current.waitErr))
}

// Poll returns the next message from channel without blocking.
func (k *Kernel) Poll(channel jupyter.Channel) (*jupyter.Message, bool) {
	if k.current == nil {
		return nil, false
	}
	select {
	case message := <-k.current.inboxes[channel]:
		if channel == jupyter.Stdin && message.Type() == jupyter.MsgInputRequest {
			k.lastInputRequest = message.Header
		}
		return message, true
	default:
		return nil, false
	}
}

// Execute sends an execute_request on shell and returns its msg_id.
func (k *Kernel) Execute(code string, allowStdin bool) (string, error) {
	return k.request(jupyter.Shell, jupyter.MsgExecuteRequest, jupyter.ExecuteRequest{
		Code:            code,
		StoreHistory:    true,
		UserExpressions: map[string]any{},
		AllowStdin:      allowStdin,
		StopOnError:     true,
	})
}

// Inspect sends an inspect_request on shell, or on control when
// useControl is set, and returns its msg_id.
func (k *Kernel) Inspect(code string, cursorPos, detailLevel int, useControl bool) (string, error) {
	channel := jupyter.Shell
	if useControl {
		channel = jupyter.Control
	}
	return k.request(channel, jupyter.MsgInspectRequest, jupyter.InspectRequest{
		Code:        code,
		CursorPos:   cursorPos,
		DetailLevel: detailLevel,
	})
}

// SendInput answers the most recent input_request.
func (k *Kernel) SendInput(text string) error {
	if err := k.check(); err != nil {
		return err
	}
	message, err := k.session.NewMessage(jupyter.MsgInputReply, jupyter.InputReply{Value: text})
	if err != nil {
		return err
	}
	message.ParentHeader = k.lastInputRequest
	return k.current.send(k.session, jupyter.Stdin, message)
}

func (k *Kernel) request(channel jupyter.Channel, msgType string, content any) (string, error) {
	if err := k.check(); err != nil {
		return "", err
	}
	message, err := k.session.NewMessage(msgType, content)
	if err != nil {
		return "", err
	}
	if err := k.current.send(k.session, channel, message); err != nil {
		return "", err
	}
	return message.Header.MsgID, nil
}

func (k *Kernel) check() error {
	if k.closed {
		return ErrClosed
	}
	if k.current == nil || !k.current.running() {
		return ErrNotRunning
	}
	return nil
}

// Interrupt interrupts the running execution: by interrupt_request on
// control when the kernelspec asks for it, otherwise by SIGINT.
func (k *Kernel) Interrupt() error {
	if err := k.check(); err != nil {
		return err
	}
	if k.spec.InterruptByMessage() {
		_, err := k.request(jupyter.Control, jupyter.MsgInterruptRequest, struct{}{})
		return err
	}
	return interruptProcess(k.current.pid)
}

// Pause stops the kernel process group with SIGSTOP.
func (k *Kernel) Pause() error {
	if err := k.check(); err != nil {
		return err
	}
	return stopProcess(k.current.pid)
}

// Resume continues a paused kernel process group with SIGCONT.
func (k *Kernel) Resume() error {
	if err := k.check(); err != nil {
		return err
	}
	return continueProcess(k.current.pid)
}

// Restart stops the current process and starts a new one from the
// same kernelspec, working directory, and session. Messages still
// queued from the old process are discarded with it.
func (k *Kernel) Restart(ctx context.Context) error {
	if k.closed {
		return ErrClosed
	}
	if k.current != nil {
		k.requestShutdown(true)
		k.current.stop(k.launcher, true)
		k.current = nil
	}
	k.lastInputRequest = jupyter.Header{}
	return k.boot(ctx)
}

// Shutdown asks the kernel to exit, then stops it. It is idempotent
// and never fails: secondary errors are logged.
func (k *Kernel) Shutdown() {
	if k.closed {
		return
	}
	k.closed = true
	if k.current == nil {
		return
	}
	k.requestShutdown(false)
	k.current.stop(k.launcher, true)
	k.current = nil
}

func (k *Kernel) requestShutdown(restart bool) {
	if !k.current.running() {
		return
	}
	message, err := k.session.NewMessage(jupyter.MsgShutdownRequest, jupyter.ShutdownRequest{Restart: restart})
	if err == nil {
		err = k.current.send(k.session, jupyter.Control, message)
	}
	if err != nil {
		k.current.logger.Warn("shutdown_request failed", "error", err)
	}
}

// boot starts a new instance and waits for it to become ready.
func (k *Kernel) boot(ctx context.Context) error {
	inst, err := k.startInstance(ctx)
	if err != nil {
		return err
	}
	if err := k.waitReady(ctx, inst); err != nil {
		inst.stop(k.launcher, false)
		return err
	}
	k.current = inst
	return nil
}

// kernelInfoInterval is how often kernel_info_request is resent while
// waiting for readiness.
const kernelInfoInterval = time.Second

// waitReady sends kernel_info_request until the kernel has replied on
// shell and published anything on IOPub, then discards the startup
// traffic so the consumer starts from an empty inbox.
func (k *Kernel) waitReady(ctx context.Context, inst *instance) error {
	clk := k.launcher.clock()
	deadline := clk.After(k.launcher.readyTimeout())

	sendInfo := func() {
		message, err := k.session.NewMessage(jupyter.MsgKernelInfoRequest, struct{}{})
		if err == nil {
			err = inst.send(k.session, jupyter.Shell, message)
		}
		if err != nil {
			inst.logger.Debug("kernel_info_request failed", "error", err)
		}
	}
	sendInfo()

	var replied, published bool
	for !replied || !published {
		select {
		case message := <-inst.inboxes[jupyter.Shell]:
			if message.Type() != jupyter.MsgKernelInfoReply {
				continue
			}
			replied = true
			var info jupyter.KernelInfoReply
			if err := message.DecodeContent(&info); err == nil {
				inst.logger.Info("kernel ready",
					"implementation", info.Implementation,
					"language", info.LanguageInfo.Name,
					"protocol_version", info.ProtocolVersion,
				)
			}
		case <-inst.inboxes[jupyter.IOPub]:
			published = true
		case <-inst.exited:
			return fmt.Errorf("%w: kernel %q exited during startup: %s", ErrNotReady, k.spec.Name, exitDescription(inst.waitErr))
		case <-deadline:
			return fmt.Errorf("%w: kernel %q did not answer within %s", ErrNotReady, k.spec.Name, k.launcher.readyTimeout())
		case <-ctx.Done():
			return errors.Join(ErrNotReady, ctx.Err())
		case <-clk.After(kernelInfoInterval):
			sendInfo()
		}
	}

	for _, inbox := range inst.inboxes {
		for drained := false; !drained; {
			select {
			case <-inbox:
			default:
				drained = true
			}
		}
	}
	select {
	case <-k.wake:
	default:
	}
	return nil
}
