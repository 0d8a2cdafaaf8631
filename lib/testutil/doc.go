// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for kernel-bridge
// packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with a time.After fallback) so individual tests do not need
// direct time.After calls. A bridge test that waits for an event or
// for the loop to exit goes through it.
//
// [WriteFile] writes fixture files (kernelspecs, config files) under
// a test's temporary directory.
//
// Helpers call t.Fatalf on failure rather than returning errors, since
// test setup failures are not recoverable.
package testutil
