// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/kernelbridge/lib/clock"
	"github.com/bureau-foundation/kernelbridge/lib/media"
	"github.com/bureau-foundation/kernelbridge/lib/transcript"
)

// ImageWriter persists image renderings and returns their paths.
// *media.Store implements it.
type ImageWriter interface {
	Write(rendering media.Rendering) (string, error)
}

// Recorder receives every line crossing the client boundary.
// *transcript.Writer implements it.
type Recorder interface {
	Record(direction transcript.Direction, line []byte) error
	Close() error
}

// Bridge runs the scheduler loop between a client and a kernel.
type Bridge struct {
	// Input carries client commands. If it implements io.Closer it is
	// closed when the loop exits.
	Input io.Reader

	// Output receives events. Each tick's events arrive in one Write.
	Output io.Writer

	// Launcher starts kernels for the start command.
	Launcher Launcher

	// DefaultKernel is the kernelspec name used when start names none.
	// Empty means "python3".
	DefaultKernel string

	// PollInterval bounds one idle tick. Zero means 50ms.
	PollInterval time.Duration

	// ReplyGrace bounds how long completion waits for the shell reply
	// after idle. Zero completes on idle without waiting.
	ReplyGrace time.Duration

	// MaxCommandBytes bounds one command line. Zero means
	// lineproto.DefaultMaxLineBytes.
	MaxCommandBytes int

	// Images persists image outputs. Nil writes to the system
	// temporary directory.
	Images ImageWriter

	// Transcript, if set, records every command and event line. It is
	// closed when the loop exits.
	Transcript Recorder

	// Clock drives poll intervals and reply grace. Nil means the real
	// clock.
	Clock clock.Clock

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Per-message events are logged at Debug level; lifecycle
	// events at Info.
	Logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// DefaultReplyGrace is the reply grace used by cmd/kernel-bridge.
const DefaultReplyGrace = 2 * time.Second

func (b *Bridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Bridge) clock() clock.Clock {
	if b.Clock != nil {
		return b.Clock
	}
	return clock.Real()
}

func (b *Bridge) pollInterval() time.Duration {
	if b.PollInterval > 0 {
		return b.PollInterval
	}
	return 50 * time.Millisecond
}

func (b *Bridge) defaultKernel() string {
	if b.DefaultKernel != "" {
		return b.DefaultKernel
	}
	return "python3"
}

func (b *Bridge) images() ImageWriter {
	if b.Images != nil {
		return b.Images
	}
	return &media.Store{}
}

// Run runs the loop until shutdown, input EOF, context cancellation,
// or an output failure, and returns the output failure if there was
// one.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	return b.Wait()
}

// Start validates the configuration and starts the loop in the
// background.
func (b *Bridge) Start(ctx context.Context) error {
	if b.Input == nil {
		return fmt.Errorf("bridge: Input is required")
	}
	if b.Output == nil {
		return fmt.Errorf("bridge: Output is required")
	}
	if b.Launcher == nil {
		return fmt.Errorf("bridge: Launcher is required")
	}

	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	loop := newLoop(b)

	go func() {
		defer close(b.done)
		b.err = loop.run(ctx)
	}()

	b.logger().Info("bridge started",
		"default_kernel", b.defaultKernel(),
		"poll_interval", b.pollInterval(),
		"reply_grace", b.ReplyGrace,
	)
	return nil
}

// Stop cancels the loop and waits for cleanup to finish.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.done != nil {
		<-b.done
	}
}

// Wait blocks until the loop has exited and returns its error.
func (b *Bridge) Wait() error {
	if b.done == nil {
		return nil
	}
	<-b.done
	return b.err
}

// inputChunk is one read from Input.
type inputChunk struct {
	data []byte
	err  error
}

// pumpInput reads Input into chunks until a read fails or ctx ends.
// It is the only goroutine that touches Input.
func pumpInput(ctx context.Context, input io.Reader, chunks chan<- inputChunk) {
	defer close(chunks)
	buffer := make([]byte, 32<<10)
	for {
		n, err := input.Read(buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])
			select {
			case chunks <- inputChunk{data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			select {
			case chunks <- inputChunk{err: err}:
			case <-ctx.Done():
			}
			return
		}
	}
}

// inputCloseWait bounds how long cleanup waits for the input pump
// after closing Input. Some readers (a blocking terminal) cannot be
// interrupted by Close.
const inputCloseWait = time.Second
