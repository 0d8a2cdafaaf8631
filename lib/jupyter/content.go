// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jupyter

import "strings"

// MimeBundle maps MIME types to representations. Text values may be
// a string or a list of strings that concatenate to the text (the
// notebook on-disk form, which some kernels also send on the wire).
type MimeBundle map[string]any

// Text returns the textual representation for mimeType.
func (b MimeBundle) Text(mimeType string) (string, bool) {
	value, ok := b[mimeType]
	if !ok {
		return "", false
	}
	switch typed := value.(type) {
	case string:
		return typed, true
	case []any:
		var builder strings.Builder
		for _, part := range typed {
			text, ok := part.(string)
			if !ok {
				return "", false
			}
			builder.WriteString(text)
		}
		return builder.String(), true
	default:
		return "", false
	}
}

// FirstText returns the first textual representation found among
// mimeTypes, in order.
func (b MimeBundle) FirstText(mimeTypes ...string) (string, bool) {
	for _, mimeType := range mimeTypes {
		if text, ok := b.Text(mimeType); ok {
			return text, true
		}
	}
	return "", false
}

type ExecuteRequest struct {
	Code            string         `json:"code"`
	Silent          bool           `json:"silent"`
	StoreHistory    bool           `json:"store_history"`
	UserExpressions map[string]any `json:"user_expressions"`
	AllowStdin      bool           `json:"allow_stdin"`
	StopOnError     bool           `json:"stop_on_error"`
}

// ExecuteReply is the shell reply to an execute_request. Payload
// entries are keyed by "source"; the "page" source carries long-form
// output meant for a pager.
type ExecuteReply struct {
	Status         string           `json:"status"`
	ExecutionCount int              `json:"execution_count"`
	Payload        []map[string]any `json:"payload,omitempty"`
	Ename          string           `json:"ename,omitempty"`
	Evalue         string           `json:"evalue,omitempty"`
	Traceback      []string         `json:"traceback,omitempty"`
}

// PageBundle returns the data bundle of the first "page" payload, if
// the reply has one.
func (r *ExecuteReply) PageBundle() (MimeBundle, bool) {
	for _, entry := range r.Payload {
		if source, _ := entry["source"].(string); source != "page" {
			continue
		}
		if data, ok := entry["data"].(map[string]any); ok {
			return MimeBundle(data), true
		}
		// Protocol versions before 5.0 put the text directly in the
		// payload entry.
		if text, ok := entry["text"].(string); ok {
			return MimeBundle{"text/plain": text}, true
		}
	}
	return nil, false
}

type InspectRequest struct {
	Code        string `json:"code"`
	CursorPos   int    `json:"cursor_pos"`
	DetailLevel int    `json:"detail_level"`
}

type InspectReply struct {
	Status   string         `json:"status"`
	Found    bool           `json:"found"`
	Data     MimeBundle     `json:"data"`
	Metadata map[string]any `json:"metadata"`
	Ename    string         `json:"ename,omitempty"`
	Evalue   string         `json:"evalue,omitempty"`
}

// Stream is stdout/stderr text from the kernel. Text is passed
// through untouched, including terminal control sequences.
type Stream struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// DisplayData is the content of display_data, update_display_data,
// and execute_result messages.
type DisplayData struct {
	Data           MimeBundle     `json:"data"`
	Metadata       map[string]any `json:"metadata"`
	ExecutionCount int            `json:"execution_count,omitempty"`
}

type Error struct {
	Ename     string   `json:"ename"`
	Evalue    string   `json:"evalue"`
	Traceback []string `json:"traceback"`
}

// Status reports kernel execution state: "busy", "idle", or
// "starting".
type Status struct {
	ExecutionState string `json:"execution_state"`
}

type InputRequest struct {
	Prompt   string `json:"prompt"`
	Password bool   `json:"password"`
}

type InputReply struct {
	Value string `json:"value"`
}

type ShutdownRequest struct {
	Restart bool `json:"restart"`
}

type KernelInfoReply struct {
	Status          string `json:"status"`
	ProtocolVersion string `json:"protocol_version"`
	Implementation  string `json:"implementation"`
	Banner          string `json:"banner"`
	LanguageInfo    struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"language_info"`
}
