// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "fmt"

// State is the lifecycle state of the kernel connection.
type State int

const (
	Stopped State = iota
	Starting
	Ready
	Busy
	Restarting
	ShuttingDown
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Busy:
		return "busy"
	case Restarting:
		return "restarting"
	case ShuttingDown:
		return "shutting down"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the legal successor states. ShuttingDown is
// reachable from every state and handled separately.
var transitions = map[State][]State{
	Stopped:      {Starting},
	Starting:     {Ready, Stopped},
	Ready:        {Busy, Restarting, Stopped},
	Busy:         {Ready, Restarting, Stopped},
	Restarting:   {Ready, Stopped},
	ShuttingDown: {Stopped},
}

func canTransition(from, to State) bool {
	if to == ShuttingDown {
		return from != ShuttingDown
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
