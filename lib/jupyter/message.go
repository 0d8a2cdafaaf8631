// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the messaging protocol version written into
// every outgoing header.
const ProtocolVersion = "5.3"

// Channel identifies one of the kernel sockets.
type Channel int

const (
	IOPub Channel = iota
	Shell
	Control
	Stdin
)

// Channels lists every channel in the order the bridge polls them.
var Channels = [...]Channel{IOPub, Shell, Control, Stdin}

func (c Channel) String() string {
	switch c {
	case IOPub:
		return "iopub"
	case Shell:
		return "shell"
	case Control:
		return "control"
	case Stdin:
		return "stdin"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Message types used by the bridge.
const (
	MsgExecuteRequest    = "execute_request"
	MsgExecuteReply      = "execute_reply"
	MsgInspectRequest    = "inspect_request"
	MsgInspectReply      = "inspect_reply"
	MsgKernelInfoRequest = "kernel_info_request"
	MsgKernelInfoReply   = "kernel_info_reply"
	MsgShutdownRequest   = "shutdown_request"
	MsgInterruptRequest  = "interrupt_request"
	MsgInputRequest      = "input_request"
	MsgInputReply        = "input_reply"

	MsgStream            = "stream"
	MsgDisplayData       = "display_data"
	MsgUpdateDisplayData = "update_display_data"
	MsgExecuteResult     = "execute_result"
	MsgError             = "error"
	MsgStatus            = "status"
)

// Header is a message header. The parent_header of a reply is the
// header of the request that caused it; an unsolicited message has an
// empty parent header.
type Header struct {
	MsgID    string `json:"msg_id"`
	Session  string `json:"session"`
	Username string `json:"username"`
	Date     string `json:"date"`
	MsgType  string `json:"msg_type"`
	Version  string `json:"version"`
}

// Message is one decoded kernel message. Content stays raw until the
// consumer knows which type to decode it into.
type Message struct {
	// Identities are the routing prefix frames before the delimiter.
	// Outgoing DEALER messages leave this empty.
	Identities [][]byte

	Header       Header
	ParentHeader Header
	Metadata     map[string]any
	Content      json.RawMessage
	Buffers      [][]byte
}

// Type returns the message type from the header.
func (m *Message) Type() string {
	return m.Header.MsgType
}

// ParentID returns the msg_id of the request this message answers,
// or "" for unsolicited messages.
func (m *Message) ParentID() string {
	return m.ParentHeader.MsgID
}

// DecodeContent unmarshals the message content into target.
func (m *Message) DecodeContent(target any) error {
	if len(m.Content) == 0 {
		return fmt.Errorf("%s message has no content", m.Header.MsgType)
	}
	if err := json.Unmarshal(m.Content, target); err != nil {
		return fmt.Errorf("decoding %s content: %w", m.Header.MsgType, err)
	}
	return nil
}
