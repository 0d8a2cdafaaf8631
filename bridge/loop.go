// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/bureau-foundation/kernelbridge/lib/clock"
	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
	"github.com/bureau-foundation/kernelbridge/lib/transcript"
)

// loop is the single goroutine that owns the session.
type loop struct {
	bridge  *Bridge
	session *Session
	decoder lineproto.Decoder
	outbox  lineproto.Outbox
	logger  *slog.Logger
	clock   clock.Clock
	images  ImageWriter

	input       chan inputChunk
	inputClosed bool

	// exiting is set by shutdown; the loop ends after the tick's flush.
	exiting bool

	// shutDown is set once shutdownKernel has run.
	shutDown bool
}

func newLoop(b *Bridge) *loop {
	return &loop{
		bridge:  b,
		session: newSession(),
		decoder: lineproto.Decoder{MaxLineBytes: b.MaxCommandBytes},
		logger:  b.logger(),
		clock:   b.clock(),
		images:  b.images(),
		input:   make(chan inputChunk),
	}
}

func (l *loop) run(ctx context.Context) (err error) {
	pumpContext, stopPump := context.WithCancel(ctx)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		pumpInput(pumpContext, l.bridge.Input, l.input)
	}()

	defer func() {
		cleanupErr := l.cleanup(stopPump, pumpDone, err == nil)
		if err == nil {
			err = cleanupErr
		}
	}()

	// Non-zero when the previous tick drained kernel messages, so
	// more may be waiting.
	drained := 0
	for {
		if err := l.wait(ctx, drained > 0); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				l.logger.Info("context cancelled, shutting down")
				return nil
			}
			return err
		}
		if !l.exiting && !l.inputClosed {
			l.dispatch()
			drained = l.drain()
			l.checkCompletion()
			if drained == 0 {
				l.checkKernel()
			}
		}
		if err := l.flush(); err != nil {
			return err
		}
		if l.exiting || l.inputClosed {
			return nil
		}
	}
}

// wait blocks until there is something to do, then handles any input
// that arrived. With busy set it only collects input already waiting.
func (l *loop) wait(ctx context.Context, busy bool) error {
	var wake, died <-chan struct{}
	if kernel := l.session.kernel; kernel != nil {
		wake = kernel.Wake()
		if l.session.running() {
			died = kernel.Done()
		}
	}

	if busy {
		select {
		case chunk, ok := <-l.input:
			l.handleInput(ctx, chunk, ok)
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return nil
	}

	select {
	case chunk, ok := <-l.input:
		l.handleInput(ctx, chunk, ok)
	case <-wake:
	case <-died:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.clock.After(l.bridge.pollInterval()):
	}
	return nil
}

// handleInput feeds one chunk to the decoder and handles every
// complete command in it. End of input starts shutdown.
func (l *loop) handleInput(ctx context.Context, chunk inputChunk, ok bool) {
	if !ok || chunk.err != nil {
		if chunk.err != nil && !errors.Is(chunk.err, io.EOF) {
			l.logger.Warn("reading input failed", "error", chunk.err)
		} else {
			l.logger.Info("input closed, shutting down")
		}
		if pending := l.decoder.Pending(); pending > 0 {
			l.logger.Debug("discarding unterminated input", "bytes", pending)
		}
		l.inputClosed = true
		l.shutdownKernel()
		return
	}

	for _, decoded := range l.decoder.Feed(chunk.data) {
		if l.exiting {
			return
		}
		if len(decoded.Raw) > 0 {
			l.record(transcript.Inbound, decoded.Raw)
		}
		if decoded.Err != nil {
			l.logger.Warn("malformed command", "error", decoded.Err)
			l.outbox.Emit(errorEvent(nil, decoded.Err))
			continue
		}
		l.handle(ctx, decoded.Command)
	}
}

// dispatch starts the head of the queue when nothing is in flight.
func (l *loop) dispatch() {
	session := l.session
	if session.current != nil || session.state != Ready || session.kernel == nil {
		return
	}
	request, ok := session.queue.pop()
	if !ok {
		return
	}

	id, err := session.kernel.Execute(request.code, true)
	if err != nil {
		l.logger.Warn("execute failed", "seq", request.seq.String(), "error", err)
		l.outbox.Emit(errorEvent(request.seq, &CommandError{Command: lineproto.CommandExecute, Seq: request.seq, Err: err}))
		l.outbox.Emit(lineproto.Done(request.seq))
		return
	}
	session.current = &execution{id: id, seq: request.seq}
	session.pending.shell[id] = request.seq
	l.setState(Busy)
	l.logger.Debug("dispatched", "seq", request.seq.String(), "msg_id", id, "queued", session.queue.len())
}

// drain takes at most one message from each channel and returns how
// many it handled.
func (l *loop) drain() int {
	kernel := l.session.kernel
	if kernel == nil {
		return 0
	}
	count := 0
	for _, channel := range jupyter.Channels {
		// A handler may have torn the kernel down.
		if l.session.kernel != kernel {
			break
		}
		message, ok := kernel.Poll(channel)
		if !ok {
			continue
		}
		count++
		switch channel {
		case jupyter.IOPub:
			l.handleIOPub(message)
		case jupyter.Shell:
			l.handleShell(message)
		case jupyter.Control:
			l.handleControl(message)
		case jupyter.Stdin:
			l.handleStdin(message)
		}
	}
	return count
}

// checkCompletion finishes an idle execution whose shell reply did
// not arrive within ReplyGrace.
func (l *loop) checkCompletion() {
	current := l.session.current
	if current == nil || !current.idle() || current.replied {
		return
	}
	if l.clock.Now().Sub(current.idleAt) < l.bridge.ReplyGrace {
		return
	}
	l.logger.Debug("shell reply overdue, completing", "seq", current.seq.String(), "msg_id", current.id)
	delete(l.session.pending.shell, current.id)
	l.complete()
}

// checkKernel handles a kernel process that exited on its own.
func (l *loop) checkKernel() {
	session := l.session
	if !session.running() {
		return
	}
	select {
	case <-session.kernel.Done():
	default:
		return
	}

	cause := session.kernel.Err()
	l.logger.Error("kernel process died", "error", cause)
	if current := session.current; current != nil {
		evalue := "kernel process exited"
		if cause != nil {
			evalue = cause.Error()
		}
		l.outbox.Emit(lineproto.Error(current.seq, "KernelDied", evalue, ""))
		l.outbox.Emit(lineproto.Done(current.seq))
	}
	session.current = nil
	session.pending = newCorrelations()
	session.kernel.Shutdown()
	session.kernel = nil
	l.setState(Stopped)
}

// complete emits done for the current execution and clears it.
func (l *loop) complete() {
	current := l.session.current
	l.outbox.Emit(lineproto.Done(current.seq))
	l.session.current = nil
	if l.session.state == Busy {
		l.setState(Ready)
	}
	l.logger.Debug("execution complete", "seq", current.seq.String())
}

func (l *loop) setState(to State) {
	from := l.session.state
	if err := l.session.transition(to); err != nil {
		// Transitions are driven by the loop itself; an illegal one is
		// a bug, but the session must keep running.
		l.logger.Error("state machine", "error", err)
		l.session.state = to
		return
	}
	l.logger.Debug("state", "from", from.String(), "to", to.String())
}

// flush writes the tick's events and records them.
func (l *loop) flush() error {
	if l.outbox.Len() == 0 {
		return nil
	}
	written, err := l.outbox.Flush(l.bridge.Output)
	for _, line := range written {
		l.record(transcript.Outbound, line)
	}
	return err
}

func (l *loop) record(direction transcript.Direction, line []byte) {
	if l.bridge.Transcript == nil {
		return
	}
	if err := l.bridge.Transcript.Record(direction, line); err != nil {
		l.logger.Warn("transcript write failed", "error", err)
	}
}

// shutdownKernel moves the session through ShuttingDown to Stopped,
// stopping the kernel if there is one. Later calls do nothing.
func (l *loop) shutdownKernel() {
	if l.shutDown {
		return
	}
	l.shutDown = true
	session := l.session
	l.setState(ShuttingDown)
	if session.kernel != nil {
		session.kernel.Shutdown()
		session.kernel = nil
	}
	session.discardWork()
	l.setState(Stopped)
}

// cleanup runs on every exit path: it stops the kernel, stops and
// waits for the input pump, flushes what is left, and closes the
// transcript.
func (l *loop) cleanup(stopPump context.CancelFunc, pumpDone <-chan struct{}, outputHealthy bool) error {
	l.shutdownKernel()

	stopPump()
	if closer, ok := l.bridge.Input.(io.Closer); ok {
		closer.Close()
	}
	select {
	case <-pumpDone:
	case <-l.clock.After(inputCloseWait):
		l.logger.Debug("input reader did not stop after close")
	}

	var err error
	if outputHealthy {
		err = l.flush()
	}
	if l.bridge.Transcript != nil {
		if closeErr := l.bridge.Transcript.Close(); closeErr != nil {
			l.logger.Warn("closing transcript failed", "error", closeErr)
		}
	}
	l.logger.Info("bridge stopped")
	return err
}
