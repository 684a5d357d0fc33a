package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/pkg/errors"
)

// Monitor is one active CRTC
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors lists active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, errors.Wrap(err, "randr init")
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "GetScreenResources")
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// ScreenBounds returns the bounding box of all monitors. Without RandR it
// falls back to the root window size.
func (c *Connection) ScreenBounds() Monitor {
	screen := c.XUtil.Screen()
	bounds := Monitor{Name: "root", Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)}

	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		return bounds
	}
	minX, minY := monitors[0].X, monitors[0].Y
	maxX, maxY := minX+monitors[0].Width, minY+monitors[0].Height
	for _, m := range monitors[1:] {
		minX = min(minX, m.X)
		minY = min(minY, m.Y)
		maxX = max(maxX, m.X+m.Width)
		maxY = max(maxY, m.Y+m.Height)
	}
	return Monitor{Name: "union", X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// OffscreenOrigin returns a position just past the bottom-right corner of
// every monitor, clamped to the X coordinate range.
func (c *Connection) OffscreenOrigin() (int, int) {
	b := c.ScreenBounds()
	return int(clampCoord(b.X + b.Width + 1)), int(clampCoord(b.Y + b.Height + 1))
}
