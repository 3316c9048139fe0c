package emit

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLogEmitter_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, false)

	l.Emit(Event{RunID: "r1", Step: 1, NodeID: 2, Msg: "node_start"})

	got := buf.String()
	if !strings.Contains(got, "[node_start]") || !strings.Contains(got, "runID=r1") || !strings.Contains(got, "nodeID=2") {
		t.Errorf("unexpected text output: %q", got)
	}
}

func TestLogEmitter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, true)

	l.Emit(Event{RunID: "r1", Step: 1, NodeID: 2, Msg: "node_start", Meta: map[string]any{"color": int64(1)}})

	got := buf.String()
	if !strings.Contains(got, `"runID":"r1"`) || !strings.Contains(got, `"msg":"node_start"`) {
		t.Errorf("unexpected JSON output: %q", got)
	}
}

func TestLogEmitter_EmitBatch_PreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, false)

	err := l.EmitBatch(context.Background(), []Event{
		{RunID: "r1", Step: 1, Msg: "first"},
		{RunID: "r1", Step: 2, Msg: "second"},
	})
	if err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}

	firstIdx := strings.Index(buf.String(), "first")
	secondIdx := strings.Index(buf.String(), "second")
	if firstIdx < 0 || secondIdx < 0 || firstIdx > secondIdx {
		t.Errorf("events not emitted in order: %q", buf.String())
	}
}
