package main

import (
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/inputviz/internal/input"
	"github.com/1broseidon/inputviz/internal/ipc"
)

func TestRenderWindowsPlain(t *testing.T) {
	out := renderWindows([]ipc.WindowInfo{
		{Label: "main", Handle: 1, Visibility: "visible", Route: "index.html#main"},
		{Label: "KeyA", Handle: 2, Visibility: "hidden", Route: "index.html#KeyA"},
	}, false)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "LABEL") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], "KeyA") || !strings.Contains(lines[2], "hidden") || !strings.HasSuffix(lines[2], "index.html#KeyA") {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestRenderEnvelopePlain(t *testing.T) {
	ev := input.KeyDown("KeyA", 38)
	ev.Time = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	env, err := ipc.NewEnvelope("input-event", ev)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}

	line, err := renderEnvelope(env, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasSuffix(line, "key_down KeyA") {
		t.Fatalf("unexpected line %q", line)
	}

	ui, err := renderEnvelope(ipc.Envelope{Channel: "show-ui"}, false)
	if err != nil || ui != "<show-ui>" {
		t.Fatalf("unexpected ui line %q (%v)", ui, err)
	}

	if _, err := renderEnvelope(ipc.Envelope{Channel: "input-event", Payload: []byte(`{"event_type":{}}`)}, false); err == nil {
		t.Fatalf("expected decode error for empty event_type")
	}
}
