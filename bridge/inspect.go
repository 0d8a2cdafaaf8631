// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"unicode/utf8"

	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
	"github.com/bureau-foundation/kernelbridge/lib/media"
)

// inspect sends an introspection request outside the execution queue.
// Its reply is reported by expression, not seq.
func (l *loop) inspect(command lineproto.Command) error {
	expr := command.Expr
	if !l.session.running() {
		l.outbox.Emit(lineproto.InspectError(expr, errNoKernel.Error()))
		return nil
	}

	cursorPos := utf8.RuneCountInString(expr)
	if command.CursorPos != nil {
		cursorPos = *command.CursorPos
	}
	detail := 0
	if command.Detail != nil {
		detail = *command.Detail
	}

	id, err := l.session.kernel.Inspect(expr, cursorPos, detail, command.PreferControl)
	if err != nil {
		l.outbox.Emit(lineproto.InspectError(expr, err.Error()))
		return nil
	}
	l.session.pending.inspect[id] = expr
	l.logger.Debug("inspect sent", "expr", expr, "msg_id", id, "control", command.PreferControl)
	return nil
}

// takeInspect removes and returns the expression waiting on id.
func (l *loop) takeInspect(id string) (string, bool) {
	expr, ok := l.session.pending.inspect[id]
	if ok {
		delete(l.session.pending.inspect, id)
	}
	return expr, ok
}

func (l *loop) inspectReply(expr string, message *jupyter.Message) {
	var reply jupyter.InspectReply
	if err := message.DecodeContent(&reply); err != nil {
		l.outbox.Emit(lineproto.InspectError(expr, err.Error()))
		return
	}
	if reply.Status != "ok" {
		text := reply.Ename + ": " + reply.Evalue
		if reply.Ename == "" && reply.Evalue == "" {
			text = "inspect_request " + reply.Status
		}
		l.outbox.Emit(lineproto.InspectError(expr, text))
		return
	}
	text, _ := reply.Data.FirstText(media.MimeMarkdown, media.MimePlain, mimeHTML)
	l.outbox.Emit(lineproto.InspectReply(expr, reply.Found, text))
}

const mimeHTML = "text/html"
