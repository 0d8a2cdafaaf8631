// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint error handler for
// kernel-bridge. Errors returned from run() are reported here because
// the structured logger may not exist yet (a bad --config fails before
// logging is configured), and because stdout belongs to the protocol:
// nothing but events may ever be written there.
package process
