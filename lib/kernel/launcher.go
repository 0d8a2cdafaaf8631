// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/kernelbridge/lib/clock"
	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

// Launcher starts kernels. The zero value launches from the standard
// Jupyter kernelspec directories with default timeouts.
type Launcher struct {
	// SearchPath lists kernelspec directories, highest priority
	// first. Empty means jupyter.DefaultSearchPath().
	SearchPath []string

	// RuntimeDirectory receives connection files. Empty means the
	// system temporary directory.
	RuntimeDirectory string

	// IP is the address kernels bind to. Empty means 127.0.0.1.
	IP string

	// ReadyTimeout bounds the wait for a kernel to answer
	// kernel_info_request. Zero means 30 seconds.
	ReadyTimeout time.Duration

	// ShutdownGrace is how long a kernel gets to exit after
	// shutdown_request, and again after SIGTERM, before it is killed.
	ShutdownGrace time.Duration

	// InboxSize bounds each channel's inbox. Zero means 256.
	InboxSize int

	// Output receives the kernel process's stdout and stderr. It must
	// never be the bridge's protocol stream. Nil means os.Stderr.
	Output io.Writer

	Logger *slog.Logger
	Clock  clock.Clock
}

// Launch starts the kernelspec named name in workingDirectory (empty
// for the current directory) and waits until it is ready.
func (l *Launcher) Launch(ctx context.Context, name, workingDirectory string) (*Kernel, error) {
	spec, err := jupyter.FindKernelSpec(name, l.searchPath())
	if err != nil {
		return nil, err
	}
	key := uuid.NewString()
	kernel := &Kernel{
		launcher:         l,
		spec:             spec,
		workingDirectory: workingDirectory,
		key:              key,
		session:          jupyter.NewSession([]byte(key), l.clock()),
		wake:             make(chan struct{}, 1),
	}
	if err := kernel.boot(ctx); err != nil {
		return nil, err
	}
	return kernel, nil
}

func (l *Launcher) searchPath() []string {
	if len(l.SearchPath) > 0 {
		return l.SearchPath
	}
	return jupyter.DefaultSearchPath()
}

func (l *Launcher) runtimeDirectory() string {
	if l.RuntimeDirectory != "" {
		return l.RuntimeDirectory
	}
	return os.TempDir()
}

func (l *Launcher) ip() string {
	if l.IP != "" {
		return l.IP
	}
	return "127.0.0.1"
}

func (l *Launcher) readyTimeout() time.Duration {
	if l.ReadyTimeout > 0 {
		return l.ReadyTimeout
	}
	return 30 * time.Second
}

func (l *Launcher) inboxSize() int {
	if l.InboxSize > 0 {
		return l.InboxSize
	}
	return 256
}

func (l *Launcher) output() io.Writer {
	if l.Output != nil {
		return l.Output
	}
	return os.Stderr
}

func (l *Launcher) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Launcher) clock() clock.Clock {
	if l.Clock != nil {
		return l.Clock
	}
	return clock.Real()
}
