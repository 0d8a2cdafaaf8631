// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bureau-foundation/kernelbridge/lib/kernel"
	"github.com/bureau-foundation/kernelbridge/lib/lineproto"
)

func TestErrorEvent(t *testing.T) {
	seq := lineproto.IntSeq(3)
	tests := []struct {
		name       string
		err        error
		wantSeq    string
		wantEname  string
		wantEvalue string
	}{
		{
			name:       "protocol",
			err:        &lineproto.ProtocolError{Line: "nope", Err: errors.New("invalid character")},
			wantSeq:    "null",
			wantEname:  "ProtocolError",
			wantEvalue: `malformed command "nope": invalid character`,
		},
		{
			name:       "command",
			err:        &CommandError{Command: lineproto.CommandRestart, Seq: seq, Err: errNoKernel},
			wantSeq:    "3",
			wantEname:  "CommandError",
			wantEvalue: "restart: kernel is not running",
		},
		{
			name:       "lifecycle",
			err:        &LifecycleError{Op: "start", Err: errors.New("timed out")},
			wantSeq:    "3",
			wantEname:  "LifecycleError",
			wantEvalue: "start failed: timed out",
		},
		{
			name:       "kernel",
			err:        &KernelError{Ename: "ValueError", Evalue: "bad"},
			wantSeq:    "3",
			wantEname:  "ValueError",
			wantEvalue: "bad",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			event := errorEvent(seq, test.err)
			if event.Type != lineproto.EventError {
				t.Fatalf("type = %s", event.Type)
			}
			if event.Seq.String() != test.wantSeq {
				t.Errorf("seq = %s, want %s", event.Seq, test.wantSeq)
			}
			if event.Ename != test.wantEname {
				t.Errorf("ename = %q, want %q", event.Ename, test.wantEname)
			}
			if event.Evalue != test.wantEvalue {
				t.Errorf("evalue = %q, want %q", event.Evalue, test.wantEvalue)
			}
		})
	}
}

func TestSignalErrorClassification(t *testing.T) {
	tests := []struct {
		err         error
		wantReason  SignalReason
		wantMessage string
	}{
		{fmt.Errorf("stop: %w", kernel.ErrSignalUnsupported), SignalUnsupported, "pause is not supported on this platform"},
		{fmt.Errorf("stop: %w", kernel.ErrNotRunning), SignalNotRunning, "kernel is not running"},
		{kernel.ErrClosed, SignalNotRunning, "kernel is not running"},
		{errors.New("operation not permitted"), SignalFailed, "pause failed: operation not permitted"},
	}
	for _, test := range tests {
		signalErr := signalError("pause", test.err)
		if signalErr.Reason != test.wantReason {
			t.Errorf("signalError(%v).Reason = %s, want %s", test.err, signalErr.Reason, test.wantReason)
		}
		if signalErr.Error() != test.wantMessage {
			t.Errorf("signalError(%v) = %q, want %q", test.err, signalErr.Error(), test.wantMessage)
		}
		if !errors.Is(signalErr, test.err) {
			t.Errorf("signalError(%v) does not wrap its cause", test.err)
		}
	}
}
