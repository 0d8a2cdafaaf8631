// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Kernel-bridge drives a Jupyter kernel from a line-delimited JSON
// protocol on stdin and stdout. Commands arrive one JSON object per
// line on stdin; events leave one JSON object per line on stdout.
// Logs, and the kernel process's own output, go to stderr so stdout
// carries nothing but protocol.
//
// The dump-transcript subcommand prints a session transcript recorded
// with --transcript as JSON lines.
package main
