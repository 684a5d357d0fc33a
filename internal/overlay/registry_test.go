package overlay

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
)

type fakeHost struct {
	next    Handle
	created []Descriptor
	shown   []Handle
	hidden  []Handle

	createErr error
	showErr   map[Handle]error
}

func (h *fakeHost) CreateWindow(d Descriptor) (Handle, error) {
	if h.createErr != nil {
		return 0, h.createErr
	}
	h.next++
	h.created = append(h.created, d)
	return h.next, nil
}

func (h *fakeHost) ShowWindow(handle Handle) error {
	if err := h.showErr[handle]; err != nil {
		return err
	}
	h.shown = append(h.shown, handle)
	return nil
}

func (h *fakeHost) HideWindow(handle Handle) error {
	h.hidden = append(h.hidden, handle)
	return nil
}

type notification struct {
	label   string
	channel string
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(label, channel string, payload any) bool {
	n.sent = append(n.sent, notification{label: label, channel: channel})
	return true
}

func newTestRegistry(host Host, notifier Notifier) *Registry {
	return NewRegistry(host, notifier, Config{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
}

func TestCreateIsIdempotent(t *testing.T) {
	host := &fakeHost{}
	r := newTestRegistry(host, &fakeNotifier{})

	first, created, err := r.Create("A")
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	second, created, err := r.Create("A")
	if err != nil || created {
		t.Fatalf("second create: created=%v err=%v", created, err)
	}

	if r.Len() != 1 {
		t.Fatalf("expected 1 window, got %d", r.Len())
	}
	if len(host.created) != 1 {
		t.Fatalf("expected one host create, got %d", len(host.created))
	}
	if first.Handle != second.Handle {
		t.Fatalf("expected same handle, got %d and %d", first.Handle, second.Handle)
	}
	if v, _ := r.visibility("A"); v != Hidden {
		t.Fatalf("new window should start hidden, got %s", v)
	}
}

func TestCreateDescriptor(t *testing.T) {
	host := &fakeHost{}
	r := newTestRegistry(host, &fakeNotifier{})

	if _, _, err := r.Create("KeyA"); err != nil {
		t.Fatalf("create: %v", err)
	}
	d := host.created[0]
	if d.Route != "index.html#KeyA" {
		t.Fatalf("unexpected route %q", d.Route)
	}
	if d.Title != "input-viz-key" {
		t.Fatalf("unexpected title %q", d.Title)
	}
	if d.Geometry != (Rect{X: 0, Y: 0, Width: 1, Height: 1}) {
		t.Fatalf("unexpected geometry %+v", d.Geometry)
	}
	c := d.Chrome
	if c.Decorated || c.Focusable || c.Resizable || c.Closable || c.InitiallyVisible || c.Shadowed {
		t.Fatalf("unexpected chrome %+v", c)
	}
	if !c.AlwaysOnTop || !c.SkipTaskbar {
		t.Fatalf("overlay must float and skip the taskbar: %+v", c)
	}
}

func TestCreateRejectsEmptyLabel(t *testing.T) {
	host := &fakeHost{}
	r := newTestRegistry(host, &fakeNotifier{})

	if _, _, err := r.Create(""); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if len(host.created) != 0 {
		t.Fatalf("host must not be asked for an unlabeled window")
	}
}

func TestCreateFailureRegistersNothing(t *testing.T) {
	boom := errors.New("no display")
	host := &fakeHost{createErr: boom}
	r := newTestRegistry(host, &fakeNotifier{})

	if _, _, err := r.Create("A"); !errors.Is(err, boom) {
		t.Fatalf("expected host error, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("failed create must not register, got %d", r.Len())
	}

	host.createErr = nil
	if _, created, err := r.Create("A"); err != nil || !created {
		t.Fatalf("retry after failure: created=%v err=%v", created, err)
	}
}

func TestShowHideAll(t *testing.T) {
	host := &fakeHost{}
	r := newTestRegistry(host, &fakeNotifier{})

	r.Create("A")
	r.Create("B")

	if err := r.SetVisibility(All, Visible); err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, label := range []string{"A", "B"} {
		if v, _ := r.visibility(label); v != Visible {
			t.Fatalf("%s should be visible, got %s", label, v)
		}
	}

	if err := r.SetVisibility(All, Hidden); err != nil {
		t.Fatalf("hide: %v", err)
	}
	for _, label := range []string{"A", "B"} {
		if v, _ := r.visibility(label); v != Hidden {
			t.Fatalf("%s should be hidden, got %s", label, v)
		}
	}

	r.Create("A")
	if r.Len() != 2 {
		t.Fatalf("re-create must not grow the registry, got %d", r.Len())
	}
}

func TestPrimaryIsNotifiedNotToggled(t *testing.T) {
	host := &fakeHost{}
	notifier := &fakeNotifier{}
	r := newTestRegistry(host, notifier)

	mainEntry, _, _ := r.Create("main")
	r.Create("A")
	if !mainEntry.Primary {
		t.Fatalf("main should be the primary window")
	}

	r.SetVisibility(All, Visible)
	r.SetVisibility(All, Hidden)

	want := []notification{{"main", EventShown}, {"main", EventHidden}}
	if len(notifier.sent) != len(want) {
		t.Fatalf("expected %d notifications, got %v", len(want), notifier.sent)
	}
	for i := range want {
		if notifier.sent[i] != want[i] {
			t.Fatalf("notification %d: got %v want %v", i, notifier.sent[i], want[i])
		}
	}

	for _, h := range append(host.shown, host.hidden...) {
		if h == mainEntry.Handle {
			t.Fatalf("primary window must not be shown or hidden directly")
		}
	}
	if len(host.shown) != 1 || len(host.hidden) != 1 {
		t.Fatalf("expected A toggled once each way, shown=%v hidden=%v", host.shown, host.hidden)
	}
}

func TestPredicateExcludingPrimarySkipsNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	r := newTestRegistry(&fakeHost{}, notifier)
	r.Create("main")
	r.Create("A")

	r.SetVisibility(func(label string) bool { return label != "main" }, Visible)
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification, got %v", notifier.sent)
	}
	if v, _ := r.visibility("A"); v != Visible {
		t.Fatalf("A should be visible")
	}
}

func TestPartialFailureKeepsGoing(t *testing.T) {
	boom := errors.New("bad window")
	host := &fakeHost{}
	r := newTestRegistry(host, &fakeNotifier{})

	a, _, _ := r.Create("A")
	r.Create("B")
	host.showErr = map[Handle]error{a.Handle: boom}

	err := r.SetVisibility(All, Visible)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined host error, got %v", err)
	}
	if v, _ := r.visibility("A"); v != Hidden {
		t.Fatalf("failed window must keep its state, got %s", v)
	}
	if v, _ := r.visibility("B"); v != Visible {
		t.Fatalf("B should still be shown, got %s", v)
	}
}

func TestEntriesInCreationOrder(t *testing.T) {
	r := newTestRegistry(&fakeHost{}, &fakeNotifier{})
	for _, label := range []string{"c", "a", "b"} {
		r.Create(label)
	}
	entries := r.Entries()
	for i, want := range []string{"c", "a", "b"} {
		if entries[i].Descriptor.Label != want {
			t.Fatalf("entry %d: got %q want %q", i, entries[i].Descriptor.Label, want)
		}
	}
}

func TestOffscreenPlacement(t *testing.T) {
	d := NewDescriptor("A", Options{Placement: PlacementOffscreen, Transparent: true})
	if d.Geometry.X <= 0 || d.Geometry.Width != 1 {
		t.Fatalf("unexpected offscreen geometry %+v", d.Geometry)
	}
	if !d.Chrome.Transparent {
		t.Fatalf("expected transparent chrome")
	}
}

func TestPrimaryHasNoHostWindow(t *testing.T) {
	host := &fakeHost{}
	r := newTestRegistry(host, &fakeNotifier{})

	e, created, err := r.Create("main")
	if err != nil || !created {
		t.Fatalf("create main: created=%v err=%v", created, err)
	}
	if e.Handle != 0 || len(host.created) != 0 {
		t.Fatalf("primary must not get a host window, handle=%d created=%d", e.Handle, len(host.created))
	}

	r.SetVisibility(All, Visible)
	if v, _ := r.visibility("main"); v != Visible {
		t.Fatalf("primary should track the requested state, got %s", v)
	}
	if len(host.shown) != 0 {
		t.Fatalf("nothing to show on the host, got %v", host.shown)
	}
}
