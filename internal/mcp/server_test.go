package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/inputviz/internal/ipc"
)

type fakeDaemon struct {
	windows []ipc.WindowInfo
	actions []string
	err     error
}

func (f *fakeDaemon) CreateWindow(label string) (*ipc.CreateWindowData, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, w := range f.windows {
		if w.Label == label {
			return &ipc.CreateWindowData{Window: w}, nil
		}
	}
	w := ipc.WindowInfo{Label: label, Route: "index.html#" + label, Handle: uint64(len(f.windows) + 1), Visibility: "hidden"}
	f.windows = append(f.windows, w)
	return &ipc.CreateWindowData{Window: w, Created: true}, nil
}

func (f *fakeDaemon) SetVisibility(action string) error {
	if f.err != nil {
		return f.err
	}
	f.actions = append(f.actions, action)
	v := "hidden"
	if action == "show" {
		v = "visible"
	}
	for i := range f.windows {
		f.windows[i].Visibility = v
	}
	return nil
}

func (f *fakeDaemon) ListWindows() ([]ipc.WindowInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.windows, nil
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{DaemonRunning: true, WindowCount: len(f.windows), Channel: "input-event"}, nil
}

func TestCreateOverlay(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)

	_, out, err := s.handleCreateOverlay(context.Background(), nil, CreateOverlayInput{Label: " KeyA "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !out.Created || out.Overlay.Label != "KeyA" || out.Overlay.Route != "index.html#KeyA" {
		t.Fatalf("unexpected output %+v", out)
	}

	_, out, err = s.handleCreateOverlay(context.Background(), nil, CreateOverlayInput{Label: "KeyA"})
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if out.Created {
		t.Fatalf("second create should report existing overlay")
	}

	if _, _, err := s.handleCreateOverlay(context.Background(), nil, CreateOverlayInput{Label: "  "}); err == nil {
		t.Fatalf("expected blank label to be rejected")
	}
}

func TestSetVisibilityRejectsQuit(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)

	for _, action := range []string{"quit", "explode", ""} {
		if _, _, err := s.handleSetVisibility(context.Background(), nil, SetVisibilityInput{Action: action}); err == nil {
			t.Fatalf("action %q should be rejected", action)
		}
	}
	if len(d.actions) != 0 {
		t.Fatalf("nothing should reach the daemon, got %v", d.actions)
	}
}

func TestSetVisibilityReturnsOverlays(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)
	s.handleCreateOverlay(context.Background(), nil, CreateOverlayInput{Label: "A"})

	_, out, err := s.handleSetVisibility(context.Background(), nil, SetVisibilityInput{Action: "SHOW"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if out.Action != "show" || len(out.Overlays) != 1 || out.Overlays[0].Visibility != "visible" {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(d.actions) != 1 || d.actions[0] != "show" {
		t.Fatalf("unexpected actions %v", d.actions)
	}
}

func TestListOverlaysEmpty(t *testing.T) {
	s := NewServer(&fakeDaemon{}, nil)

	_, out, err := s.handleListOverlays(context.Background(), nil, ListOverlaysInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Overlays == nil || len(out.Overlays) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", out.Overlays)
	}
}

func TestDaemonErrorsSurface(t *testing.T) {
	s := NewServer(&fakeDaemon{err: errors.New("failed to connect to daemon")}, nil)

	if _, _, err := s.handleStatus(context.Background(), nil, StatusInput{}); err == nil || !strings.Contains(err.Error(), "connect") {
		t.Fatalf("expected connection error, got %v", err)
	}
	if _, _, err := s.handleListOverlays(context.Background(), nil, ListOverlaysInput{}); err == nil {
		t.Fatalf("expected list to fail")
	}
}
