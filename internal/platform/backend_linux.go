//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/inputviz/internal/capture"
	"github.com/1broseidon/inputviz/internal/overlay"
	"github.com/1broseidon/inputviz/internal/x11"
)

// LinuxBackend hosts overlays on an X11 connection.
type LinuxBackend struct {
	conn        *x11.Connection
	opts        Options
	logger      *slog.Logger
	transparent bool
}

var _ Backend = (*LinuxBackend)(nil)

// New opens an X11 connection for the backend.
func New(opts Options, logger *slog.Logger) (*LinuxBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	b := &LinuxBackend{conn: conn, opts: opts, logger: logger}
	composited, err := conn.HasCompositor()
	if err != nil {
		logger.Warn("compositor probe failed; overlays will be opaque", "error", err)
	}
	b.transparent = composited
	logger.Debug("x11 backend ready", "display", opts.Display, "compositor", composited)
	return b, nil
}

// SupportsTransparency reports whether a compositing manager was running at
// connect time.
func (b *LinuxBackend) SupportsTransparency() bool {
	return b.transparent
}

// CreateWindow creates an unmapped overlay window.
func (b *LinuxBackend) CreateWindow(d overlay.Descriptor) (overlay.Handle, error) {
	spec := overlaySpec(d, b.conn.OffscreenOrigin)
	wid, err := b.conn.CreateOverlay(spec)
	if err != nil {
		return 0, err
	}
	return overlay.Handle(wid), nil
}

// ShowWindow maps the window.
func (b *LinuxBackend) ShowWindow(h overlay.Handle) error {
	return b.conn.ShowOverlay(xproto.Window(h))
}

// HideWindow unmaps the window.
func (b *LinuxBackend) HideWindow(h overlay.Handle) error {
	return b.conn.HideOverlay(xproto.Window(h))
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		})
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// InputHook returns a RECORD hook on the same display. It opens its own
// connections when Listen is called.
func (b *LinuxBackend) InputHook() capture.Hook {
	return &x11.InputHook{
		Display: b.opts.Display,
		Motion:  b.opts.Motion,
		Keys:    b.conn,
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	b.conn.EventLoop()
}

// Quit stops the event loop.
func (b *LinuxBackend) Quit() {
	b.conn.Quit()
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}
