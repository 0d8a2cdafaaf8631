// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

import (
	"bytes"
	"encoding/json"
)

// EventType identifies an event sent to the client.
type EventType string

const (
	EventReady        EventType = "ready"
	EventStream       EventType = "stream"
	EventResult       EventType = "result"
	EventMarkdown     EventType = "markdown"
	EventImage        EventType = "image"
	EventPager        EventType = "pager"
	EventError        EventType = "error"
	EventDone         EventType = "done"
	EventInterrupted  EventType = "interrupted"
	EventPaused       EventType = "paused"
	EventPauseFailed  EventType = "pause_failed"
	EventResumed      EventType = "resumed"
	EventResumeFailed EventType = "resume_failed"
	EventStdinRequest EventType = "stdin_request"
	EventInspectReply EventType = "inspect_reply"
	EventInspectError EventType = "inspect_error"
	EventBye          EventType = "bye"
)

// Event is one line sent to the client. It is a flat union: each
// event type uses a subset of the fields, and MarshalJSON writes
// exactly that subset. Decoding (used by tests and transcript tools)
// fills whichever fields are present.
type Event struct {
	Type      EventType `json:"type"`
	Seq       Seq       `json:"seq,omitempty"`
	Name      string    `json:"name,omitempty"`
	Text      string    `json:"text,omitempty"`
	Value     string    `json:"value,omitempty"`
	Path      string    `json:"path,omitempty"`
	Ename     string    `json:"ename,omitempty"`
	Evalue    string    `json:"evalue,omitempty"`
	Traceback string    `json:"traceback,omitempty"`
	Message   string    `json:"message,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Password  bool      `json:"password,omitempty"`
	Expr      string    `json:"expr,omitempty"`
	Found     bool      `json:"found,omitempty"`
}

// MarshalJSON implements json.Marshaler with a fixed field set per
// event type. Seq is written as null for error and stdin_request
// events that have no originating request.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventStream:
		return marshal(struct {
			Type EventType `json:"type"`
			Seq  Seq       `json:"seq"`
			Name string    `json:"name"`
			Text string    `json:"text"`
		}{e.Type, e.Seq, e.Name, e.Text})
	case EventResult, EventMarkdown, EventPager:
		return marshal(struct {
			Type  EventType `json:"type"`
			Seq   Seq       `json:"seq"`
			Value string    `json:"value"`
		}{e.Type, e.Seq, e.Value})
	case EventImage:
		return marshal(struct {
			Type EventType `json:"type"`
			Seq  Seq       `json:"seq"`
			Path string    `json:"path"`
		}{e.Type, e.Seq, e.Path})
	case EventError:
		return marshal(struct {
			Type      EventType `json:"type"`
			Seq       Seq       `json:"seq"`
			Ename     string    `json:"ename"`
			Evalue    string    `json:"evalue"`
			Traceback string    `json:"traceback"`
		}{e.Type, e.Seq, e.Ename, e.Evalue, e.Traceback})
	case EventDone:
		return marshal(struct {
			Type EventType `json:"type"`
			Seq  Seq       `json:"seq"`
		}{e.Type, e.Seq})
	case EventPauseFailed, EventResumeFailed:
		return marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	case EventStdinRequest:
		return marshal(struct {
			Type     EventType `json:"type"`
			Seq      Seq       `json:"seq"`
			Prompt   string    `json:"prompt"`
			Password bool      `json:"password"`
		}{e.Type, e.Seq, e.Prompt, e.Password})
	case EventInspectReply:
		return marshal(struct {
			Type  EventType `json:"type"`
			Expr  string    `json:"expr"`
			Found bool      `json:"found"`
			Text  string    `json:"text"`
		}{e.Type, e.Expr, e.Found, e.Text})
	case EventInspectError:
		return marshal(struct {
			Type    EventType `json:"type"`
			Expr    string    `json:"expr"`
			Message string    `json:"message"`
		}{e.Type, e.Expr, e.Message})
	default:
		return marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	}
}

func Ready() Event { return Event{Type: EventReady} }

func Interrupted() Event { return Event{Type: EventInterrupted} }

func Paused() Event { return Event{Type: EventPaused} }

func Resumed() Event { return Event{Type: EventResumed} }

func Bye() Event { return Event{Type: EventBye} }

func Stream(seq Seq, name, text string) Event {
	return Event{Type: EventStream, Seq: seq, Name: name, Text: text}
}

func Result(seq Seq, value string) Event {
	return Event{Type: EventResult, Seq: seq, Value: value}
}

func Markdown(seq Seq, value string) Event {
	return Event{Type: EventMarkdown, Seq: seq, Value: value}
}

func Image(seq Seq, path string) Event {
	return Event{Type: EventImage, Seq: seq, Path: path}
}

func Pager(seq Seq, value string) Event {
	return Event{Type: EventPager, Seq: seq, Value: value}
}

// Error builds an error event. seq may be zero for failures not tied
// to a request.
func Error(seq Seq, ename, evalue, traceback string) Event {
	return Event{Type: EventError, Seq: seq, Ename: ename, Evalue: evalue, Traceback: traceback}
}

func Done(seq Seq) Event {
	return Event{Type: EventDone, Seq: seq}
}

func PauseFailed(message string) Event {
	return Event{Type: EventPauseFailed, Message: message}
}

func ResumeFailed(message string) Event {
	return Event{Type: EventResumeFailed, Message: message}
}

func StdinRequest(seq Seq, prompt string, password bool) Event {
	return Event{Type: EventStdinRequest, Seq: seq, Prompt: prompt, Password: password}
}

func InspectReply(expr string, found bool, text string) Event {
	return Event{Type: EventInspectReply, Expr: expr, Found: found, Text: text}
}

func InspectError(expr, message string) Event {
	return Event{Type: EventInspectError, Expr: expr, Message: message}
}

// marshal encodes v without HTML escaping. json.Marshal would turn
// '<' into \u003c before the outer encoder ever sees the bytes.
func marshal(v any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}
