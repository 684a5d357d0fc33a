package tray

import (
	"log/slog"

	"github.com/1broseidon/inputviz/internal/overlay"
)

// Overlays is the part of the overlay registry the tray drives.
type Overlays interface {
	SetVisibility(match overlay.Predicate, v overlay.Visibility) error
}

// Controller turns menu selections into registry operations. It must be
// called from the goroutine that owns the registry.
type Controller struct {
	overlays Overlays
	exit     func(code int)
	logger   *slog.Logger
}

// NewController creates a controller. exit is invoked with code 0 on Quit.
func NewController(overlays Overlays, exit func(code int), logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{overlays: overlays, exit: exit, logger: logger}
}

// HandleMenuID decodes id and dispatches it. Unknown ids are logged and
// ignored.
func (c *Controller) HandleMenuID(id string) error {
	action, ok := ParseAction(id)
	if !ok {
		c.logger.Debug("ignoring unknown menu id", "id", id)
		return nil
	}
	return c.Dispatch(action)
}

// Dispatch performs action. Show and Hide apply to every tracked window;
// the primary surface is notified rather than toggled by the registry.
func (c *Controller) Dispatch(action Action) error {
	c.logger.Info("tray action", "action", action.ID())
	switch action {
	case ActionShow:
		return c.overlays.SetVisibility(overlay.All, overlay.Visible)
	case ActionHide:
		return c.overlays.SetVisibility(overlay.All, overlay.Hidden)
	case ActionQuit:
		if c.exit != nil {
			c.exit(0)
		}
		return nil
	default:
		c.logger.Debug("ignoring unknown tray action", "action", int(action))
		return nil
	}
}
