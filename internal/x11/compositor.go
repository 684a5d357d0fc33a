package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/pkg/errors"
)

// HasCompositor reports whether a compositing manager owns the
// _NET_WM_CM_S<screen> selection for the default screen.
func (c *Connection) HasCompositor() (bool, error) {
	name := fmt.Sprintf("_NET_WM_CM_S%d", c.XUtil.Conn().DefaultScreen)
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return false, errors.Wrapf(err, "intern %s", name)
	}
	reply, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false, errors.Wrap(err, "GetSelectionOwner")
	}
	return reply.Owner != xproto.WindowNone, nil
}
