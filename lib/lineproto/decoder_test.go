// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

import (
	"errors"
	"strings"
	"testing"
)

func TestFeedBuffersPartialLines(t *testing.T) {
	var decoder Decoder

	if got := decoder.Feed([]byte(`{"type":"exec`)); len(got) != 0 {
		t.Fatalf("partial line produced %d results", len(got))
	}
	if decoder.Pending() == 0 {
		t.Fatal("partial line was not buffered")
	}

	got := decoder.Feed([]byte(`ute","seq":1,"code":"1+1"}` + "\n" + `{"type":"inter`))
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Err != nil {
		t.Fatalf("unexpected error: %v", got[0].Err)
	}
	command := got[0].Command
	if command.Type != CommandExecute || command.Code != "1+1" || !command.Seq.Equal(IntSeq(1)) {
		t.Fatalf("decoded %+v", command)
	}

	got = decoder.Feed([]byte("rupt\"}\n"))
	if len(got) != 1 || got[0].Command.Type != CommandInterrupt {
		t.Fatalf("second command: %+v", got)
	}
	if decoder.Pending() != 0 {
		t.Fatalf("Pending() = %d after complete lines, want 0", decoder.Pending())
	}
}

func TestFeedSkipsBlankLines(t *testing.T) {
	var decoder Decoder
	got := decoder.Feed([]byte("\n   \n\t\r\n{\"type\":\"shutdown\"}\r\n\n"))
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Command.Type != CommandShutdown {
		t.Fatalf("type = %q, want shutdown", got[0].Command.Type)
	}
}

func TestFeedReportsMalformedLinesInOrder(t *testing.T) {
	var decoder Decoder
	input := strings.Join([]string{
		`{"type":"execute","seq":1,"code":"a"}`,
		`not json`,
		`{"seq":2}`,
		`{"type":"execute","seq":3,"code":"b"}`,
	}, "\n") + "\n"

	got := decoder.Feed([]byte(input))
	if len(got) != 4 {
		t.Fatalf("got %d results, want 4", len(got))
	}
	if got[0].Err != nil || got[3].Err != nil {
		t.Fatalf("valid lines reported errors: %v, %v", got[0].Err, got[3].Err)
	}
	for _, index := range []int{1, 2} {
		var protocolError *ProtocolError
		if !errors.As(got[index].Err, &protocolError) {
			t.Fatalf("line %d: error %v is not a ProtocolError", index, got[index].Err)
		}
	}
	if !got[3].Command.Seq.Equal(IntSeq(3)) {
		t.Fatalf("seq after malformed lines = %s, want 3", got[3].Command.Seq)
	}
}

func TestFeedKeepsSeqVerbatim(t *testing.T) {
	var decoder Decoder
	got := decoder.Feed([]byte(`{"type":"execute","seq":"cell-7","code":""}` + "\n" + `{"type":"execute","seq":null,"code":""}` + "\n"))
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].Command.Seq.String() != `"cell-7"` {
		t.Errorf("string seq = %s, want \"cell-7\"", got[0].Command.Seq)
	}
	if !got[1].Command.Seq.IsZero() {
		t.Errorf("null seq = %s, want absent", got[1].Command.Seq)
	}
}

func TestFeedDiscardsOversizedLine(t *testing.T) {
	decoder := Decoder{MaxLineBytes: 16}

	got := decoder.Feed([]byte(`{"type":"execute","code":"`))
	if len(got) != 1 {
		t.Fatalf("got %d results for oversized prefix, want 1", len(got))
	}
	var protocolError *ProtocolError
	if !errors.As(got[0].Err, &protocolError) {
		t.Fatalf("error %v is not a ProtocolError", got[0].Err)
	}

	got = decoder.Feed([]byte(`more text that belongs to the same line`))
	if len(got) != 0 {
		t.Fatalf("continuation of oversized line produced %d results", len(got))
	}

	got = decoder.Feed([]byte("\"}\n{\"type\":\"pause\"}\n"))
	if len(got) != 1 || got[0].Command.Type != CommandPause {
		t.Fatalf("decoder did not recover after oversized line: %+v", got)
	}
}

func TestFeedRejectsOversizedTerminatedLine(t *testing.T) {
	decoder := Decoder{MaxLineBytes: 16}

	long := `{"type":"execute","seq":1,"code":"` + strings.Repeat("x", 64) + `"}`
	got := decoder.Feed([]byte(long + "\n{\"type\":\"pause\"}\n"))
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}
	var protocolError *ProtocolError
	if !errors.As(got[0].Err, &protocolError) {
		t.Fatalf("oversized line gave %+v, want a ProtocolError", got[0])
	}
	if got[0].Command.Type != "" {
		t.Fatalf("oversized line decoded as %q", got[0].Command.Type)
	}
	if got[1].Err != nil || got[1].Command.Type != CommandPause {
		t.Fatalf("line after oversized line = %+v, want pause", got[1])
	}
	if decoder.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", decoder.Pending())
	}
}

func TestFeedInspectOptionalFields(t *testing.T) {
	var decoder Decoder
	got := decoder.Feed([]byte(`{"type":"inspect","expr":"np.array","cursor_pos":3,"prefer_control":true}` + "\n"))
	if len(got) != 1 || got[0].Err != nil {
		t.Fatalf("decode: %+v", got)
	}
	command := got[0].Command
	if command.CursorPos == nil || *command.CursorPos != 3 {
		t.Errorf("cursor_pos = %v, want 3", command.CursorPos)
	}
	if command.Detail != nil {
		t.Errorf("detail = %v, want nil", *command.Detail)
	}
	if !command.PreferControl {
		t.Error("prefer_control = false, want true")
	}
}
