// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge connects a line-delimited JSON control protocol to a
// Jupyter kernel.
//
// A client writes one command per line (start, execute, interrupt,
// restart, shutdown, pause, resume, stdin_reply, inspect) and reads
// one event per line back. The kernel answers asynchronously across
// four channels, out of order and tagged only with the msg_id of the
// request that caused each message. [Bridge] turns that into an
// ordered event stream per execution: every output event for an
// execute carries the client's seq, and a single done{seq} closes it.
//
// All session state lives in one goroutine, the loop. Each tick it:
//
//  1. waits for input bytes, a kernel wake-up, or the poll interval
//     (skipped while the kernel still has queued messages)
//  2. decodes complete command lines and handles them
//  3. dispatches the head of the execution queue if nothing is in flight
//  4. drains at most one message from each of IOPub, shell, control,
//     and stdin, in that order
//  5. completes an execution whose shell reply is overdue, and notices
//     a kernel process that died
//  6. writes every event produced by the tick in one write
//
// Draining one message per channel per tick keeps a chatty kernel
// from starving the command stream: a shutdown or interrupt arriving
// during heavy output is handled on the next tick.
//
// An execution completes when IOPub reports idle for its msg_id and
// the shell execute_reply has been seen. The reply can carry pager
// output, so completion waits for it, bounded by ReplyGrace, to keep
// done the last event for its seq.
//
// Restart discards the queue, the in-flight execution, and every
// pending correlation in one step. Messages from the old kernel that
// are still in flight carry msg_ids nothing refers to any more and are
// dropped.
//
// Failures while handling a command become error events carrying the
// command's seq; nothing short of input closure, context cancellation,
// or an output write failure stops the loop. Every exit path shuts the
// kernel down.
package bridge
