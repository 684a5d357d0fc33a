package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/pkg/errors"
)

// WindowClass is the WM_CLASS set on every overlay window.
const WindowClass = "inputviz"

// OverlaySpec is the X-level description of an overlay window.
type OverlaySpec struct {
	Name        string
	Instance    string
	X, Y        int
	Width       int
	Height      int
	Decorated   bool
	Transparent bool
	AlwaysOnTop bool
	SkipTaskbar bool
	Resizable   bool
	Focusable   bool
	Shadowed    bool
	// Actions lists the window actions the user may take, as
	// _NET_WM_ACTION_* names without the prefix ("CLOSE", "MINIMIZE", ...).
	Actions []string
}

// CreateOverlay creates an unmapped top-level window for spec.
func (c *Connection) CreateOverlay(spec OverlaySpec) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, errors.Wrap(err, "allocate window id")
	}

	x, y := clampCoord(spec.X), clampCoord(spec.Y)
	w, h := clampSize(spec.Width), clampSize(spec.Height)

	depth := screen.RootDepth
	visual := screen.RootVisual
	// Value list order follows the bit positions of the mask (low to high).
	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel)
	values := []uint32{0, 0}

	if spec.Transparent {
		if argb, ok := c.argbVisual(); ok {
			cmap, err := xproto.NewColormapId(conn)
			if err != nil {
				return 0, errors.Wrap(err, "allocate colormap id")
			}
			if err := xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, c.Root, argb).Check(); err != nil {
				return 0, errors.Wrap(err, "CreateColormap")
			}
			depth = 32
			visual = argb
			mask |= xproto.CwColormap
			values = append(values, uint32(cmap))
		}
	}

	err = xproto.CreateWindowChecked(
		conn,
		depth,
		wid,
		c.Root,
		x, y,
		w, h,
		0, // border_width
		xproto.WindowClassInputOutput,
		visual,
		mask,
		values,
	).Check()
	if err != nil {
		return 0, errors.Wrap(err, "CreateWindow")
	}

	if err := c.applyOverlayHints(wid, spec); err != nil {
		c.DestroyOverlay(wid)
		return 0, err
	}
	return wid, nil
}

func (c *Connection) applyOverlayHints(wid xproto.Window, spec OverlaySpec) error {
	xu := c.XUtil

	if err := icccm.WmNameSet(xu, wid, spec.Name); err != nil {
		return errors.Wrap(err, "set WM_NAME")
	}
	if err := ewmh.WmNameSet(xu, wid, spec.Name); err != nil {
		return errors.Wrap(err, "set _NET_WM_NAME")
	}
	if err := icccm.WmClassSet(xu, wid, &icccm.WmClass{Instance: spec.Instance, Class: WindowClass}); err != nil {
		return errors.Wrap(err, "set WM_CLASS")
	}

	input := uint(0)
	if spec.Focusable {
		input = 1
	}
	if err := icccm.WmHintsSet(xu, wid, &icccm.Hints{Flags: icccm.HintInput, Input: input}); err != nil {
		return errors.Wrap(err, "set WM_HINTS")
	}

	normal := &icccm.NormalHints{
		Flags: icccm.SizeHintUSPosition | icccm.SizeHintPPosition,
		X:     spec.X,
		Y:     spec.Y,
	}
	if !spec.Resizable {
		normal.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		normal.MinWidth, normal.MaxWidth = uint(clampSize(spec.Width)), uint(clampSize(spec.Width))
		normal.MinHeight, normal.MaxHeight = uint(clampSize(spec.Height)), uint(clampSize(spec.Height))
	}
	if err := icccm.WmNormalHintsSet(xu, wid, normal); err != nil {
		return errors.Wrap(err, "set WM_NORMAL_HINTS")
	}

	if !spec.Decorated {
		hints := &motif.Hints{
			Flags:      motif.HintDecorations,
			Decoration: motif.DecorationNone,
		}
		if err := motif.WmHintsSet(xu, wid, hints); err != nil {
			return errors.Wrap(err, "set _MOTIF_WM_HINTS")
		}
	}

	if err := ewmh.WmWindowTypeSet(xu, wid, []string{"_NET_WM_WINDOW_TYPE_UTILITY"}); err != nil {
		return errors.Wrap(err, "set _NET_WM_WINDOW_TYPE")
	}

	var states []string
	if spec.AlwaysOnTop {
		states = append(states, "_NET_WM_STATE_ABOVE")
	}
	if spec.SkipTaskbar {
		states = append(states, "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER")
	}
	if len(states) > 0 {
		if err := ewmh.WmStateSet(xu, wid, states); err != nil {
			return errors.Wrap(err, "set _NET_WM_STATE")
		}
	}

	actions := make([]string, 0, len(spec.Actions))
	for _, a := range spec.Actions {
		actions = append(actions, "_NET_WM_ACTION_"+a)
	}
	if err := ewmh.WmAllowedActionsSet(xu, wid, actions); err != nil {
		return errors.Wrap(err, "set _NET_WM_ALLOWED_ACTIONS")
	}

	if !spec.Shadowed {
		// Honored by picom/compton style compositors.
		if err := xprop.ChangeProp32(xu, wid, "_COMPTON_SHADOW", "CARDINAL", 0); err != nil {
			return errors.Wrap(err, "set _COMPTON_SHADOW")
		}
	}
	return nil
}

// ShowOverlay maps wid and raises it.
func (c *Connection) ShowOverlay(wid xproto.Window) error {
	conn := c.XUtil.Conn()
	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		return errors.Wrapf(err, "MapWindow 0x%x", uint32(wid))
	}
	xwindow.New(c.XUtil, wid).Stack(xproto.StackModeAbove)
	return nil
}

// HideOverlay unmaps wid without destroying it.
func (c *Connection) HideOverlay(wid xproto.Window) error {
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), wid).Check(); err != nil {
		return errors.Wrapf(err, "UnmapWindow 0x%x", uint32(wid))
	}
	return nil
}

// DestroyOverlay destroys wid.
func (c *Connection) DestroyOverlay(wid xproto.Window) {
	xwindow.New(c.XUtil, wid).Destroy()
}

// argbVisual finds a 32-bit TrueColor visual, which compositors use for
// per-pixel alpha.
func (c *Connection) argbVisual() (xproto.Visualid, bool) {
	for _, d := range c.XUtil.Screen().AllowedDepths {
		if d.Depth != 32 {
			continue
		}
		for _, v := range d.Visuals {
			if v.Class == xproto.VisualClassTrueColor {
				return v.VisualId, true
			}
		}
	}
	return 0, false
}

func clampCoord(v int) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

func clampSize(v int) uint16 {
	switch {
	case v < 1:
		return 1
	case v > 65535:
		return 65535
	default:
		return uint16(v)
	}
}
