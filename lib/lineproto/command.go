// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

// CommandType identifies a client command.
type CommandType string

const (
	// CommandStart launches a kernel: {"type":"start","kernel":"python3","cwd":"/path"}.
	CommandStart CommandType = "start"

	// CommandExecute queues code for execution: {"type":"execute","seq":1,"code":"..."}.
	CommandExecute CommandType = "execute"

	// CommandInterrupt interrupts the running execution.
	CommandInterrupt CommandType = "interrupt"

	// CommandRestart restarts the kernel, discarding queued work.
	CommandRestart CommandType = "restart"

	// CommandShutdown stops the kernel and ends the session.
	CommandShutdown CommandType = "shutdown"

	// CommandPause stops the kernel process with SIGSTOP.
	CommandPause CommandType = "pause"

	// CommandResume continues a paused kernel process with SIGCONT.
	CommandResume CommandType = "resume"

	// CommandStdinReply answers a stdin_request: {"type":"stdin_reply","text":"..."}.
	CommandStdinReply CommandType = "stdin_reply"

	// CommandInspect asks the kernel about an expression:
	// {"type":"inspect","expr":"foo","cursor_pos":3,"detail":0,"prefer_control":false}.
	CommandInspect CommandType = "inspect"
)

// Command is one decoded client line. Fields not used by a command
// type are left at their zero values.
type Command struct {
	Type CommandType `json:"type"`
	Seq  Seq         `json:"seq,omitempty"`

	// Code is the source text of an execute command.
	Code string `json:"code,omitempty"`

	// Kernel is the kernelspec name for start. Empty selects the
	// configured default.
	Kernel string `json:"kernel,omitempty"`

	// Cwd is the working directory for the kernel process on start.
	Cwd string `json:"cwd,omitempty"`

	// Text is the input line for stdin_reply.
	Text string `json:"text,omitempty"`

	// Expr, CursorPos, Detail, and PreferControl parameterize inspect.
	// A nil CursorPos means "end of expr"; a nil Detail means 0.
	Expr          string `json:"expr,omitempty"`
	CursorPos     *int   `json:"cursor_pos,omitempty"`
	Detail        *int   `json:"detail,omitempty"`
	PreferControl bool   `json:"prefer_control,omitempty"`
}
