package platform

import (
	"testing"

	"github.com/1broseidon/inputviz/internal/overlay"
)

func TestOverlaySpecFromDescriptor(t *testing.T) {
	d := overlay.NewDescriptor("KeyA", overlay.Options{Transparent: true})
	spec := overlaySpec(d, nil)

	if spec.Name != "input-viz-key" || spec.Instance != "index.html#KeyA" {
		t.Fatalf("unexpected naming %+v", spec)
	}
	if spec.X != 0 || spec.Y != 0 || spec.Width != 1 || spec.Height != 1 {
		t.Fatalf("unexpected geometry %+v", spec)
	}
	if spec.Decorated || spec.Focusable || spec.Resizable || spec.Shadowed {
		t.Fatalf("overlay chrome not carried over: %+v", spec)
	}
	if !spec.AlwaysOnTop || !spec.SkipTaskbar || !spec.Transparent {
		t.Fatalf("overlay chrome not carried over: %+v", spec)
	}
	if len(spec.Actions) != 0 {
		t.Fatalf("overlay should allow no window actions, got %v", spec.Actions)
	}
}

func TestOverlaySpecOffscreenUsesHostOrigin(t *testing.T) {
	d := overlay.NewDescriptor("A", overlay.Options{Placement: overlay.PlacementOffscreen})
	spec := overlaySpec(d, func() (int, int) { return 3841, 2161 })
	if spec.X != 3841 || spec.Y != 2161 {
		t.Fatalf("expected host offscreen origin, got (%d,%d)", spec.X, spec.Y)
	}
}

func TestOverlaySpecActions(t *testing.T) {
	d := overlay.Descriptor{Chrome: overlay.Chrome{Closable: true, Maximizable: true}}
	spec := overlaySpec(d, nil)
	want := []string{"CLOSE", "MAXIMIZE_HORZ", "MAXIMIZE_VERT"}
	if len(spec.Actions) != len(want) {
		t.Fatalf("got %v want %v", spec.Actions, want)
	}
	for i := range want {
		if spec.Actions[i] != want[i] {
			t.Fatalf("got %v want %v", spec.Actions, want)
		}
	}
}
