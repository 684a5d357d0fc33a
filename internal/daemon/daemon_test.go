package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/inputviz/internal/capture"
	"github.com/1broseidon/inputviz/internal/config"
	"github.com/1broseidon/inputviz/internal/input"
	"github.com/1broseidon/inputviz/internal/ipc"
	"github.com/1broseidon/inputviz/internal/overlay"
	"github.com/1broseidon/inputviz/internal/platform"
)

type fakeBackend struct {
	mu      sync.Mutex
	next    overlay.Handle
	created []overlay.Descriptor
	shown   []overlay.Handle
	hidden  []overlay.Handle
	quit    chan struct{}
	once    sync.Once
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{quit: make(chan struct{})}
}

func (b *fakeBackend) CreateWindow(d overlay.Descriptor) (overlay.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.created = append(b.created, d)
	return b.next, nil
}

func (b *fakeBackend) ShowWindow(h overlay.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shown = append(b.shown, h)
	return nil
}

func (b *fakeBackend) HideWindow(h overlay.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hidden = append(b.hidden, h)
	return nil
}

func (b *fakeBackend) SupportsTransparency() bool            { return false }
func (b *fakeBackend) Displays() ([]platform.Display, error) { return nil, nil }
func (b *fakeBackend) InputHook() capture.Hook               { return nil }
func (b *fakeBackend) EventLoop()                            { <-b.quit }
func (b *fakeBackend) Quit()                                 { b.once.Do(func() { close(b.quit) }) }
func (b *fakeBackend) Disconnect()                           {}

type harness struct {
	daemon  *Daemon
	backend *fakeBackend
	client  *ipc.Client
	release chan struct{}
	result  chan error
	cancel  context.CancelFunc
}

func startDaemon(t *testing.T) *harness {
	t.Helper()
	release := make(chan struct{})
	h := startDaemonWithHook(t, capture.HookFunc(func(emit func(input.RawEvent)) error {
		<-release
		emit(input.RawEvent{Kind: input.RawMotion, X: 10, Y: 10})
		emit(input.RawEvent{Kind: input.RawKeyPress, Key: "KeyX", Code: 53})
		emit(input.RawEvent{Kind: input.RawMotion, X: 11, Y: 10})
		emit(input.RawEvent{Kind: input.RawButtonPress, Button: input.ButtonLeft})
		select {}
	}))
	h.release = release
	return h
}

func startDaemonWithHook(t *testing.T, hook capture.Hook) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Tray.Mode = "off"

	socket := filepath.Join(t.TempDir(), "d.sock")
	backend := newFakeBackend()
	d, err := New(Options{
		Config:     cfg,
		Backend:    backend,
		Hook:       hook,
		Logger:     slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		SocketPath: socket,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- d.Run(ctx) }()

	client := ipc.NewClientWithSocket(socket)
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping() != nil {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("daemon never became reachable")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h := &harness{daemon: d, backend: backend, client: client, result: result, cancel: cancel}
	t.Cleanup(func() {
		cancel()
		select {
		case <-result:
		case <-time.After(2 * time.Second):
		}
	})
	return h
}

func subscribe(t *testing.T, h *harness, label string) <-chan ipc.Envelope {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	got := make(chan ipc.Envelope, 16)
	go h.client.Subscribe(ctx, label, func(env ipc.Envelope) error {
		got <- env
		return nil
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		status, err := h.client.GetStatus()
		if err == nil {
			for _, target := range status.Targets {
				if target == label {
					return got
				}
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber %q never attached", label)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func next(t *testing.T, ch <-chan ipc.Envelope) ipc.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return ipc.Envelope{}
	}
}

func TestCaptureFiltersMotionAndBroadcasts(t *testing.T) {
	h := startDaemon(t)
	events := subscribe(t, h, "main")

	close(h.release)

	first := next(t, events)
	second := next(t, events)
	if first.Channel != "input-event" || second.Channel != "input-event" {
		t.Fatalf("unexpected channels %q %q", first.Channel, second.Channel)
	}

	var ev input.Event
	if err := json.Unmarshal(first.Payload, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != input.KindKeyDown || ev.Key != "KeyX" {
		t.Fatalf("unexpected first event %+v", ev)
	}
	if err := json.Unmarshal(second.Payload, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Kind != input.KindButtonDown || ev.Button != input.ButtonLeft {
		t.Fatalf("unexpected second event %+v", ev)
	}

	select {
	case extra := <-events:
		t.Fatalf("motion leaked through: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShowHideRoutesPrimaryThroughNotification(t *testing.T) {
	h := startDaemon(t)
	events := subscribe(t, h, "main")

	for _, label := range []string{"A", "B", "A"} {
		if _, err := h.client.CreateWindow(label); err != nil {
			t.Fatalf("create %s: %v", label, err)
		}
	}
	windows, err := h.client.ListWindows()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %v", windows)
	}

	if err := h.client.Show(); err != nil {
		t.Fatalf("show: %v", err)
	}
	if env := next(t, events); env.Channel != "show-ui" {
		t.Fatalf("expected show-ui, got %q", env.Channel)
	}
	if err := h.client.Hide(); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if env := next(t, events); env.Channel != "hide-ui" {
		t.Fatalf("expected hide-ui, got %q", env.Channel)
	}

	h.backend.mu.Lock()
	shown, hidden := len(h.backend.shown), len(h.backend.hidden)
	h.backend.mu.Unlock()
	if shown != 2 || hidden != 2 {
		t.Fatalf("expected A and B toggled, shown=%d hidden=%d", shown, hidden)
	}

	windows, _ = h.client.ListWindows()
	for _, w := range windows {
		if w.Visibility != "hidden" {
			t.Fatalf("%s should be hidden, got %s", w.Label, w.Visibility)
		}
	}
}

func TestQuitEndsRun(t *testing.T) {
	h := startDaemon(t)

	if err := h.client.Quit(); err != nil {
		t.Fatalf("quit: %v", err)
	}
	select {
	case err := <-h.result:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop on quit")
	}
}

func TestUnknownMenuIDIgnored(t *testing.T) {
	h := startDaemon(t)
	h.client.CreateWindow("A")

	h.daemon.MenuSelect("frobnicate")

	status, err := h.client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.WindowCount != 1 {
		t.Fatalf("unexpected window count %d", status.WindowCount)
	}
	select {
	case <-h.daemon.quit:
		t.Fatal("unknown menu id must not quit")
	default:
	}
}

func TestCaptureLossKeepsDaemonServing(t *testing.T) {
	h := startDaemonWithHook(t, capture.HookFunc(func(func(input.RawEvent)) error {
		return errors.New("no RECORD extension")
	}))

	select {
	case <-h.daemon.capture.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("capture thread never stopped")
	}

	if _, err := h.client.CreateWindow("A"); err != nil {
		t.Fatalf("create after capture loss: %v", err)
	}
	status, err := h.client.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CaptureRunning {
		t.Fatalf("capture should be reported as stopped")
	}
	select {
	case err := <-h.result:
		t.Fatalf("daemon exited after capture loss: %v", err)
	default:
	}
}

func TestPrimaryLabelGetsNoHostWindow(t *testing.T) {
	h := startDaemon(t)

	data, err := h.client.CreateWindow("main")
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	if win := data.Window; !win.Primary || win.Handle != 0 {
		t.Fatalf("unexpected primary window %+v", win)
	}
	h.backend.mu.Lock()
	created := h.backend.next
	h.backend.mu.Unlock()
	if created != 0 {
		t.Fatalf("primary must not create a host window, got %d", created)
	}

	if err := h.client.Show(); err != nil {
		t.Fatalf("show: %v", err)
	}
	windows, _ := h.client.ListWindows()
	if len(windows) != 1 || windows[0].Visibility != "visible" {
		t.Fatalf("primary should record the requested state, got %+v", windows)
	}
}

func TestWaitTrayReturnsOnReadyOrCancel(t *testing.T) {
	d := &Daemon{logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}

	ready := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		d.waitTray(context.Background(), ready)
		close(returned)
	}()
	select {
	case <-returned:
		t.Fatal("waitTray returned before the tray was ready")
	case <-time.After(50 * time.Millisecond):
	}
	close(ready)
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("waitTray did not return once ready")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.waitTray(ctx, make(chan struct{}))
}

func TestLoopCallRecoversPanic(t *testing.T) {
	l := NewLoop(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	if !l.Call(func() { panic("boom") }) {
		t.Fatalf("call should complete even when the task panics")
	}
	ran := false
	l.Call(func() { ran = true })
	if !ran {
		t.Fatalf("loop should keep running after a panic")
	}

	cancel()
	<-l.done
	if l.Post(func() {}) {
		t.Fatalf("post after stop should report false")
	}
}
