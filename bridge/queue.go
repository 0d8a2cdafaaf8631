// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "github.com/bureau-foundation/kernelbridge/lib/lineproto"

// executionRequest is an accepted execute command waiting for the
// kernel.
type executionRequest struct {
	seq  lineproto.Seq
	code string
}

// executionQueue is a FIFO of execution requests.
type executionQueue struct {
	items []executionRequest
}

func (q *executionQueue) push(request executionRequest) {
	q.items = append(q.items, request)
}

func (q *executionQueue) pop() (executionRequest, bool) {
	if len(q.items) == 0 {
		return executionRequest{}, false
	}
	head := q.items[0]
	q.items[0] = executionRequest{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return head, true
}

func (q *executionQueue) len() int { return len(q.items) }

func (q *executionQueue) clear() { q.items = nil }
