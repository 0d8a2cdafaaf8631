// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package kernel launches and drives a Jupyter kernel process.
//
// [Launcher] resolves a kernelspec, writes a connection file, spawns
// the kernel in its own process group, connects the shell, control,
// stdin, and IOPub channels over ZeroMQ, and waits until the kernel
// answers kernel_info_request on shell and has published on IOPub.
// Waiting for IOPub matters: a SUB socket misses everything published
// before its subscription propagates, and a lost idle status would
// leave an execution open forever.
//
// Each socket has one reader goroutine that verifies and decodes
// frames into a bounded per-channel inbox. A single consumer drains
// the inboxes with [Kernel.Poll], one message at a time, and waits on
// [Kernel.Wake] between polls. Requests ([Kernel.Execute],
// [Kernel.Inspect], [Kernel.SendInput]) return the msg_id replies will
// carry in their parent header.
//
// Process control maps onto signals sent to the kernel's process
// group: SIGINT for interrupt (unless the kernelspec asks for
// interrupt_request messages), SIGSTOP and SIGCONT for pause and
// resume, SIGTERM then SIGKILL for shutdown. On platforms without
// these signals the operations return [ErrSignalUnsupported].
package kernel
