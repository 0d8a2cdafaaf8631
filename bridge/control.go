// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "github.com/bureau-foundation/kernelbridge/lib/lineproto"

// interrupt acknowledges at once. The interrupted execution finishes
// through the normal idle path.
func (l *loop) interrupt() error {
	l.outbox.Emit(lineproto.Interrupted())
	if l.session.kernel == nil {
		return nil
	}
	if err := l.session.kernel.Interrupt(); err != nil {
		l.logger.Warn("interrupting kernel failed", "error", err)
	}
	return nil
}

func (l *loop) pause() error {
	if l.session.kernel == nil {
		l.outbox.Emit(lineproto.PauseFailed(errNoKernel.Error()))
		return nil
	}
	if err := l.session.kernel.Pause(); err != nil {
		signalErr := signalError("pause", err)
		l.logger.Warn("pausing kernel failed", "reason", signalErr.Reason, "error", err)
		l.outbox.Emit(lineproto.PauseFailed(signalErr.Error()))
		return nil
	}
	l.outbox.Emit(lineproto.Paused())
	return nil
}

func (l *loop) resume() error {
	if l.session.kernel == nil {
		l.outbox.Emit(lineproto.ResumeFailed(errNoKernel.Error()))
		return nil
	}
	if err := l.session.kernel.Resume(); err != nil {
		signalErr := signalError("resume", err)
		l.logger.Warn("resuming kernel failed", "reason", signalErr.Reason, "error", err)
		l.outbox.Emit(lineproto.ResumeFailed(signalErr.Error()))
		return nil
	}
	l.outbox.Emit(lineproto.Resumed())
	return nil
}
