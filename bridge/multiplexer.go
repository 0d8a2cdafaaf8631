// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
	"github.com/bureau-foundation/kernelbridge/lib/media"
)

// handleIOPub turns broadcast output for the current execution into
// events. Everything else on IOPub is dropped, including output from
// executions aborted by a restart.
func (l *loop) handleIOPub(message *jupyter.Message) {
	current := l.session.current
	if current == nil || message.ParentID() != current.id {
		l.logger.Debug("dropping iopub message", "msg_type", message.Type(), "parent", message.ParentID())
		return
	}

	switch message.Type() {
	case jupyter.MsgExecuteResult, jupyter.MsgDisplayData, jupyter.MsgUpdateDisplayData:
		var content jupyter.DisplayData
		if err := message.DecodeContent(&content); err != nil {
			l.logger.Warn("bad display content", "error", err)
			return
		}
		l.emitRendering(current.seq, content.Data)

	case jupyter.MsgStream:
		var content jupyter.Stream
		if err := message.DecodeContent(&content); err != nil {
			l.logger.Warn("bad stream content", "error", err)
			return
		}
		l.outbox.Emit(lineproto.Stream(current.seq, content.Name, content.Text))

	case jupyter.MsgError:
		var content jupyter.Error
		if err := message.DecodeContent(&content); err != nil {
			l.logger.Warn("bad error content", "error", err)
			return
		}
		l.outbox.Emit(errorEvent(current.seq, &KernelError{
			Ename:     content.Ename,
			Evalue:    content.Evalue,
			Traceback: content.Traceback,
		}))

	case jupyter.MsgStatus:
		var content jupyter.Status
		if err := message.DecodeContent(&content); err != nil {
			l.logger.Warn("bad status content", "error", err)
			return
		}
		if content.ExecutionState != "idle" {
			return
		}
		current.idleAt = l.clock.Now()
		switch {
		case current.replied:
			l.complete()
		case l.bridge.ReplyGrace <= 0:
			delete(l.session.pending.shell, current.id)
			l.complete()
		}
	}
}

func (l *loop) emitRendering(seq lineproto.Seq, bundle jupyter.MimeBundle) {
	rendering, ok := media.Classify(bundle)
	if !ok {
		return
	}
	switch rendering.Kind {
	case media.KindImage:
		path, err := l.images.Write(rendering)
		if err != nil {
			l.logger.Warn("writing image failed", "mime_type", rendering.MimeType, "error", err)
			l.outbox.Emit(lineproto.Error(seq, "MediaError", err.Error(), ""))
			return
		}
		l.outbox.Emit(lineproto.Image(seq, path))
	case media.KindMarkdown:
		l.outbox.Emit(lineproto.Markdown(seq, rendering.Data))
	default:
		l.outbox.Emit(lineproto.Result(seq, rendering.Data))
	}
}

// handleShell routes inspect replies and execute replies by parent
// msg_id. An execute reply may carry pager output.
func (l *loop) handleShell(message *jupyter.Message) {
	parent := message.ParentID()
	if expr, ok := l.takeInspect(parent); ok {
		l.inspectReply(expr, message)
		return
	}

	seq, ok := l.session.pending.shell[parent]
	if !ok {
		l.logger.Debug("dropping shell message", "msg_type", message.Type(), "parent", parent)
		return
	}
	delete(l.session.pending.shell, parent)

	if message.Type() == jupyter.MsgExecuteReply {
		var reply jupyter.ExecuteReply
		if err := message.DecodeContent(&reply); err != nil {
			l.logger.Warn("bad execute reply", "error", err)
		} else if bundle, ok := reply.PageBundle(); ok {
			if text, ok := bundle.FirstText(media.MimePlain, media.MimeMarkdown, mimeHTML); ok {
				l.outbox.Emit(lineproto.Pager(seq, text))
			}
		}
	}

	current := l.session.current
	if current == nil || current.id != parent {
		return
	}
	current.replied = true
	if current.idle() {
		l.complete()
	}
}

// handleControl only carries inspect replies.
func (l *loop) handleControl(message *jupyter.Message) {
	if expr, ok := l.takeInspect(message.ParentID()); ok {
		l.inspectReply(expr, message)
		return
	}
	l.logger.Debug("dropping control message", "msg_type", message.Type(), "parent", message.ParentID())
}

func (l *loop) handleStdin(message *jupyter.Message) {
	if message.Type() != jupyter.MsgInputRequest {
		l.logger.Debug("dropping stdin message", "msg_type", message.Type())
		return
	}
	var request jupyter.InputRequest
	if err := message.DecodeContent(&request); err != nil {
		l.logger.Warn("bad input request", "error", err)
		return
	}
	var seq lineproto.Seq
	if current := l.session.current; current != nil {
		seq = current.seq
	}
	l.outbox.Emit(lineproto.StdinRequest(seq, request.Prompt, request.Password))
}
