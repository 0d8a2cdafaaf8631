// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
)

// execution is the request currently running in the kernel.
type execution struct {
	// id is the execute_request msg_id; replies carry it as their
	// parent msg_id.
	id  string
	seq lineproto.Seq

	// replied is set when the shell execute_reply has been handled.
	replied bool

	// idleAt is when IOPub reported idle for id; zero until then.
	idleAt time.Time
}

func (e *execution) idle() bool { return !e.idleAt.IsZero() }

// correlations maps outstanding msg_ids to what produced them. The
// whole value is replaced on restart so no id from an old kernel can
// match again.
type correlations struct {
	// shell maps execute msg_ids to the client seq, for shell replies.
	shell map[string]lineproto.Seq

	// inspect maps inspect msg_ids to the inspected expression.
	inspect map[string]string
}

func newCorrelations() correlations {
	return correlations{
		shell:   make(map[string]lineproto.Seq),
		inspect: make(map[string]string),
	}
}

// Session is the state of one bridge run. It is owned by the loop and
// passed to every stage; nothing else reads or writes it.
type Session struct {
	state   State
	kernel  Kernel
	current *execution
	queue   executionQueue
	pending correlations
}

func newSession() *Session {
	return &Session{state: Stopped, pending: newCorrelations()}
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

func (s *Session) transition(to State) error {
	if !canTransition(s.state, to) {
		return fmt.Errorf("illegal state transition %s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

// discardWork drops the in-flight execution, the queue, and every
// pending correlation.
func (s *Session) discardWork() {
	s.current = nil
	s.queue.clear()
	s.pending = newCorrelations()
}

// running reports whether a kernel exists and is usable.
func (s *Session) running() bool {
	return s.kernel != nil && (s.state == Ready || s.state == Busy)
}
