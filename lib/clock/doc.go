// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The bridge loop bounds each tick with a poll interval, the kernel
// launcher bounds readiness waits, and completion of an execution may
// wait a grace period for a trailing reply. All of these read time
// through a [Clock] so tests can drive them deterministically:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	b := &bridge.Bridge{Clock: c}
//	// ...
//	c.Advance(3 * time.Second) // expire the reply grace
//
// Production code uses [Real].
package clock
