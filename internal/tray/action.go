package tray

import "fmt"

// Action is a decoded tray menu selection.
type Action int

const (
	ActionShow Action = iota + 1
	ActionHide
	ActionQuit
)

// Menu item identifiers as they appear on the wire.
const (
	IDShow = "show"
	IDHide = "hide"
	IDQuit = "quit"
)

// ParseAction decodes a menu id. Unknown ids report false.
func ParseAction(id string) (Action, bool) {
	switch id {
	case IDShow:
		return ActionShow, true
	case IDHide:
		return ActionHide, true
	case IDQuit:
		return ActionQuit, true
	default:
		return 0, false
	}
}

// ID returns the menu id of the action.
func (a Action) ID() string {
	switch a {
	case ActionShow:
		return IDShow
	case ActionHide:
		return IDHide
	case ActionQuit:
		return IDQuit
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func (a Action) String() string {
	return a.ID()
}

// Mode selects which menu items the tray offers.
type Mode string

const (
	// ModeFull offers Show, Hide and Quit.
	ModeFull Mode = "full"
	// ModeReduced offers Quit only.
	ModeReduced Mode = "reduced"
	// ModeOff installs no tray icon.
	ModeOff Mode = "off"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeReduced, ModeOff:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown tray mode %q (expected full, reduced or off)", s)
	}
}

// MenuItem is one entry of the tray menu.
type MenuItem struct {
	ID    string
	Title string
	Tip   string
}

// MenuItems returns the menu entries for mode in display order.
func MenuItems(mode Mode) []MenuItem {
	quit := MenuItem{ID: IDQuit, Title: "Quit", Tip: "Exit inputviz"}
	switch mode {
	case ModeFull:
		return []MenuItem{
			{ID: IDShow, Title: "Show", Tip: "Show all overlays"},
			{ID: IDHide, Title: "Hide", Tip: "Hide all overlays"},
			quit,
		}
	case ModeReduced:
		return []MenuItem{quit}
	default:
		return nil
	}
}
