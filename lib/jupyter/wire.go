// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jupyter

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/kernelbridge/lib/clock"
)

// Delimiter separates routing identities from the message body.
const Delimiter = "<IDS|MSG>"

var (
	// ErrMissingDelimiter is returned for frames without "<IDS|MSG>".
	ErrMissingDelimiter = errors.New("jupyter: missing <IDS|MSG> delimiter")

	// ErrInvalidSignature is returned when a message's HMAC does not
	// match the session key.
	ErrInvalidSignature = errors.New("jupyter: invalid message signature")
)

// Session creates, signs, and verifies messages for one client
// session. It is safe for concurrent use: reader goroutines verify
// while the loop goroutine signs.
type Session struct {
	// ID is written into every outgoing header and identifies this
	// client to the kernel.
	ID string

	// Username is written into every outgoing header.
	Username string

	key   []byte
	clock clock.Clock
}

// NewSession returns a session signing with key. An empty key
// produces unsigned messages and accepts any signature.
func NewSession(key []byte, clk clock.Clock) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Username: "kernel-bridge",
		key:      append([]byte(nil), key...),
		clock:    clk,
	}
}

// NewMessage builds a request message with a fresh msg_id.
func (s *Session) NewMessage(msgType string, content any) (*Message, error) {
	encoded, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", msgType, err)
	}
	return &Message{
		Header: Header{
			MsgID:    uuid.NewString(),
			Session:  s.ID,
			Username: s.Username,
			Date:     s.clock.Now().UTC().Format(time.RFC3339Nano),
			MsgType:  msgType,
			Version:  ProtocolVersion,
		},
		Metadata: map[string]any{},
		Content:  encoded,
	}, nil
}

// Encode serializes message into signed wire frames.
func (s *Session) Encode(message *Message) ([][]byte, error) {
	header, err := json.Marshal(message.Header)
	if err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	parent, err := encodeParent(message.ParentHeader)
	if err != nil {
		return nil, err
	}
	metadata := message.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	encodedMetadata, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	content := []byte(message.Content)
	if len(content) == 0 {
		content = []byte("{}")
	}

	frames := make([][]byte, 0, len(message.Identities)+6+len(message.Buffers))
	frames = append(frames, message.Identities...)
	frames = append(frames,
		[]byte(Delimiter),
		[]byte(s.sign(header, parent, encodedMetadata, content)),
		header, parent, encodedMetadata, content,
	)
	frames = append(frames, message.Buffers...)
	return frames, nil
}

// Decode parses wire frames, verifying the signature when the session
// has a key.
func (s *Session) Decode(frames [][]byte) (*Message, error) {
	delimiter := -1
	for index, frame := range frames {
		if bytes.Equal(frame, []byte(Delimiter)) {
			delimiter = index
			break
		}
	}
	if delimiter < 0 {
		return nil, ErrMissingDelimiter
	}
	body := frames[delimiter+1:]
	if len(body) < 5 {
		return nil, fmt.Errorf("jupyter: message has %d frames after delimiter, want at least 5", len(body))
	}
	signature, header, parent, metadata, content := body[0], body[1], body[2], body[3], body[4]

	if len(s.key) > 0 {
		expected := s.sign(header, parent, metadata, content)
		if !hmac.Equal([]byte(expected), bytes.ToLower(signature)) {
			return nil, ErrInvalidSignature
		}
	}

	message := &Message{
		Identities: frames[:delimiter],
		Content:    json.RawMessage(content),
		Buffers:    body[5:],
	}
	if err := json.Unmarshal(header, &message.Header); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	if len(bytes.TrimSpace(parent)) > 0 {
		if err := json.Unmarshal(parent, &message.ParentHeader); err != nil {
			return nil, fmt.Errorf("decoding parent header: %w", err)
		}
	}
	if len(bytes.TrimSpace(metadata)) > 0 {
		if err := json.Unmarshal(metadata, &message.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return message, nil
}

func (s *Session) sign(frames ...[]byte) string {
	if len(s.key) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, s.key)
	for _, frame := range frames {
		mac.Write(frame)
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeParent writes an empty object for a zero parent header, as
// kernels expect for unsolicited requests.
func encodeParent(parent Header) ([]byte, error) {
	if parent == (Header{}) {
		return []byte("{}"), nil
	}
	encoded, err := json.Marshal(parent)
	if err != nil {
		return nil, fmt.Errorf("encoding parent header: %w", err)
	}
	return encoded, nil
}
