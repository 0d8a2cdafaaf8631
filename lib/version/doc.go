// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which kernel-bridge build is running. The
// build identity goes to the --version output and to the first log
// line of every session, so a transcript can be matched to the binary
// that produced it.
//
// Release builds stamp [GitCommit], [GitDirty] and [BuildTime] with the
// linker:
//
//	go build -ldflags "-X github.com/bureau-foundation/kernelbridge/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/kernel-bridge
//
// Unstamped builds report "unknown".
package version
