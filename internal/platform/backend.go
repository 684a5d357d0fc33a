package platform

import (
	"github.com/1broseidon/inputviz/internal/capture"
	"github.com/1broseidon/inputviz/internal/overlay"
)

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Options configures a backend.
type Options struct {
	// Display is the window-system display to connect to; empty means the
	// environment default.
	Display string
	// Motion asks the input hook to deliver pointer motion.
	Motion bool
}

// Backend abstracts the window system: it hosts overlay windows, provides the
// global input hook and runs the window-system event loop.
type Backend interface {
	overlay.Host
	// SupportsTransparency reports whether windows can have a transparent
	// background (a compositor is running).
	SupportsTransparency() bool
	Displays() ([]Display, error)
	InputHook() capture.Hook
	// EventLoop blocks processing window-system events until Quit.
	EventLoop()
	Quit()
	Disconnect()
}
