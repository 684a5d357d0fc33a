package tray

import (
	"bytes"
	"image/png"
	"log/slog"
	"testing"

	"github.com/1broseidon/inputviz/internal/overlay"
)

type visibilityCall struct {
	matchesMain bool
	v           overlay.Visibility
}

type fakeOverlays struct {
	calls []visibilityCall
}

func (f *fakeOverlays) SetVisibility(match overlay.Predicate, v overlay.Visibility) error {
	f.calls = append(f.calls, visibilityCall{matchesMain: match("main"), v: v})
	return nil
}

func newTestController() (*Controller, *fakeOverlays, *[]int) {
	overlays := &fakeOverlays{}
	exits := &[]int{}
	c := NewController(overlays, func(code int) { *exits = append(*exits, code) },
		slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	return c, overlays, exits
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		id   string
		want Action
		ok   bool
	}{
		{"show", ActionShow, true},
		{"hide", ActionHide, true},
		{"quit", ActionQuit, true},
		{"Show", 0, false},
		{"", 0, false},
		{"frobnicate", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.id)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseAction(%q) = %v, %v; want %v, %v", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestQuitExitsWithZero(t *testing.T) {
	c, overlays, exits := newTestController()

	if err := c.HandleMenuID("quit"); err != nil {
		t.Fatalf("quit: %v", err)
	}
	if len(*exits) != 1 || (*exits)[0] != 0 {
		t.Fatalf("expected a single exit(0), got %v", *exits)
	}
	if len(overlays.calls) != 0 {
		t.Fatalf("quit must not touch overlays")
	}
}

func TestShowHideFanOutToAll(t *testing.T) {
	c, overlays, exits := newTestController()

	c.HandleMenuID("show")
	c.HandleMenuID("hide")

	if len(overlays.calls) != 2 {
		t.Fatalf("expected 2 visibility calls, got %d", len(overlays.calls))
	}
	if overlays.calls[0].v != overlay.Visible || overlays.calls[1].v != overlay.Hidden {
		t.Fatalf("unexpected visibility sequence %+v", overlays.calls)
	}
	for _, call := range overlays.calls {
		if !call.matchesMain {
			t.Fatalf("show/hide must include the primary window")
		}
	}
	if len(*exits) != 0 {
		t.Fatalf("show/hide must not exit")
	}
}

func TestUnknownMenuIDIgnored(t *testing.T) {
	c, overlays, exits := newTestController()

	if err := c.HandleMenuID("frobnicate"); err != nil {
		t.Fatalf("unknown id should not error: %v", err)
	}
	if len(overlays.calls) != 0 || len(*exits) != 0 {
		t.Fatalf("unknown id must have no effect")
	}
}

func TestMenuItemsByMode(t *testing.T) {
	ids := func(items []MenuItem) []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.ID
		}
		return out
	}

	full := ids(MenuItems(ModeFull))
	if len(full) != 3 || full[0] != "show" || full[1] != "hide" || full[2] != "quit" {
		t.Fatalf("unexpected full menu %v", full)
	}
	reduced := ids(MenuItems(ModeReduced))
	if len(reduced) != 1 || reduced[0] != "quit" {
		t.Fatalf("unexpected reduced menu %v", reduced)
	}
	if len(MenuItems(ModeOff)) != 0 {
		t.Fatalf("off mode should have no items")
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"full", "reduced", "off"} {
		if _, err := ParseMode(s); err != nil {
			t.Fatalf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("minimal"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRenderIcon(t *testing.T) {
	data, err := RenderIcon("K")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("unexpected icon bounds %v", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("icon corner should be transparent")
	}
}
