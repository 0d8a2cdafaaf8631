// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
)

// errNoKernel is returned by commands that need a started kernel.
var errNoKernel = errors.New("kernel is not running")

// handle runs one command and turns its failure into an error event.
func (l *loop) handle(ctx context.Context, command lineproto.Command) {
	l.logger.Debug("command", "type", command.Type, "seq", command.Seq.String())
	err := l.runHandler(ctx, command)
	if err == nil {
		return
	}
	var lifecycleError *LifecycleError
	if !errors.As(err, &lifecycleError) {
		err = &CommandError{Command: command.Type, Seq: command.Seq, Err: err}
	}
	l.logger.Warn("command failed", "type", command.Type, "seq", command.Seq.String(), "error", err)
	l.outbox.Emit(errorEvent(command.Seq, err))
}

func (l *loop) runHandler(ctx context.Context, command lineproto.Command) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			l.logger.Error("command handler panicked",
				"type", command.Type,
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("internal error: %v", recovered)
		}
	}()

	switch command.Type {
	case lineproto.CommandStart:
		return l.start(ctx, command)
	case lineproto.CommandExecute:
		return l.execute(command)
	case lineproto.CommandInterrupt:
		return l.interrupt()
	case lineproto.CommandRestart:
		return l.restart(ctx)
	case lineproto.CommandShutdown:
		return l.shutdown()
	case lineproto.CommandPause:
		return l.pause()
	case lineproto.CommandResume:
		return l.resume()
	case lineproto.CommandStdinReply:
		return l.stdinReply(command)
	case lineproto.CommandInspect:
		return l.inspect(command)
	default:
		return fmt.Errorf("unknown command type %q", command.Type)
	}
}

func (l *loop) start(ctx context.Context, command lineproto.Command) error {
	session := l.session
	if session.state != Stopped {
		return fmt.Errorf("kernel is already %s", session.state)
	}

	name := command.Kernel
	if name == "" {
		name = l.bridge.defaultKernel()
	}
	l.setState(Starting)
	l.logger.Info("starting kernel", "kernel", name, "cwd", command.Cwd)

	kernel, err := l.bridge.Launcher.Launch(ctx, name, command.Cwd)
	if err != nil {
		l.setState(Stopped)
		return &LifecycleError{Op: "start", Err: err}
	}
	session.kernel = kernel
	l.setState(Ready)
	l.outbox.Emit(lineproto.Ready())
	l.logger.Info("kernel ready", "kernel", name, "queued", session.queue.len())
	return nil
}

// execute queues code. It runs once a kernel is ready and everything
// queued before it has completed.
func (l *loop) execute(command lineproto.Command) error {
	l.session.queue.push(executionRequest{seq: command.Seq, code: command.Code})
	return nil
}

func (l *loop) restart(ctx context.Context) error {
	session := l.session
	if session.kernel == nil {
		return errNoKernel
	}

	l.setState(Restarting)
	if current := session.current; current != nil {
		l.logger.Info("restart aborts execution", "seq", current.seq.String())
	}
	session.discardWork()

	if err := session.kernel.Restart(ctx); err != nil {
		session.kernel.Shutdown()
		session.kernel = nil
		l.setState(Stopped)
		return &LifecycleError{Op: "restart", Err: err}
	}
	l.setState(Ready)
	l.outbox.Emit(lineproto.Ready())
	l.logger.Info("kernel restarted")
	return nil
}

// shutdown stops the kernel and ends the loop after this tick's flush.
// Commands after it in the same read are ignored.
func (l *loop) shutdown() error {
	l.shutdownKernel()
	l.outbox.Emit(lineproto.Bye())
	l.exiting = true
	return nil
}

func (l *loop) stdinReply(command lineproto.Command) error {
	if l.session.kernel == nil {
		return errNoKernel
	}
	if err := l.session.kernel.SendInput(command.Text); err != nil {
		return fmt.Errorf("sending input: %w", err)
	}
	return nil
}
