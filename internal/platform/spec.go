package platform

import (
	"github.com/1broseidon/inputviz/internal/overlay"
	"github.com/1broseidon/inputviz/internal/x11"
)

// X11 coordinates are signed 16-bit.
const maxCoord = 32767

// overlaySpec translates a descriptor into X window properties. offscreen
// supplies a position when the descriptor's geometry is beyond what X can
// address.
func overlaySpec(d overlay.Descriptor, offscreen func() (int, int)) x11.OverlaySpec {
	c := d.Chrome
	x, y := d.Geometry.X, d.Geometry.Y
	if (x > maxCoord || y > maxCoord) && offscreen != nil {
		x, y = offscreen()
	}

	var actions []string
	if c.Closable {
		actions = append(actions, "CLOSE")
	}
	if c.Minimizable {
		actions = append(actions, "MINIMIZE")
	}
	if c.Maximizable {
		actions = append(actions, "MAXIMIZE_HORZ", "MAXIMIZE_VERT")
	}
	if c.Resizable {
		actions = append(actions, "RESIZE")
	}

	return x11.OverlaySpec{
		Name:        d.Title,
		Instance:    d.Route,
		X:           x,
		Y:           y,
		Width:       d.Geometry.Width,
		Height:      d.Geometry.Height,
		Decorated:   c.Decorated,
		Transparent: c.Transparent,
		AlwaysOnTop: c.AlwaysOnTop,
		SkipTaskbar: c.SkipTaskbar,
		Resizable:   c.Resizable,
		Focusable:   c.Focusable,
		Shadowed:    c.Shadowed,
		Actions:     actions,
	}
}
