package input

import (
	"fmt"
	"strings"
)

// keysymNames maps X keysym names to the key names the front end renders.
var keysymNames = map[string]Key{
	"Shift_L":          "ShiftLeft",
	"Shift_R":          "ShiftRight",
	"Control_L":        "ControlLeft",
	"Control_R":        "ControlRight",
	"Alt_L":            "Alt",
	"Alt_R":            "AltGr",
	"ISO_Level3_Shift": "AltGr",
	"Meta_L":           "MetaLeft",
	"Meta_R":           "MetaRight",
	"Super_L":          "MetaLeft",
	"Super_R":          "MetaRight",
	"Return":           "Return",
	"Escape":           "Escape",
	"BackSpace":        "Backspace",
	"Tab":              "Tab",
	"ISO_Left_Tab":     "Tab",
	"space":            "Space",
	"Caps_Lock":        "CapsLock",
	"Num_Lock":         "NumLock",
	"Scroll_Lock":      "ScrollLock",
	"Pause":            "Pause",
	"Print":            "PrintScreen",
	"Insert":           "Insert",
	"Delete":           "Delete",
	"Home":             "Home",
	"End":              "End",
	"Prior":            "PageUp",
	"Next":             "PageDown",
	"Left":             "LeftArrow",
	"Right":            "RightArrow",
	"Up":               "UpArrow",
	"Down":             "DownArrow",
	"grave":            "BackQuote",
	"minus":            "Minus",
	"equal":            "Equal",
	"bracketleft":      "LeftBracket",
	"bracketright":     "RightBracket",
	"backslash":        "BackSlash",
	"semicolon":        "SemiColon",
	"apostrophe":       "Quote",
	"comma":            "Comma",
	"period":           "Dot",
	"slash":            "Slash",
	"less":             "IntlBackslash",
	"KP_Enter":         "KpReturn",
	"KP_Add":           "KpPlus",
	"KP_Subtract":      "KpMinus",
	"KP_Multiply":      "KpMultiply",
	"KP_Divide":        "KpDivide",
	"KP_Decimal":       "KpDelete",
	"KP_Delete":        "KpDelete",
	"KP_Insert":        "Kp0",
	"KP_End":           "Kp1",
	"KP_Down":          "Kp2",
	"KP_Next":          "Kp3",
	"KP_Left":          "Kp4",
	"KP_Begin":         "Kp5",
	"KP_Right":         "Kp6",
	"KP_Home":          "Kp7",
	"KP_Up":            "Kp8",
	"KP_Prior":         "Kp9",
	"Menu":             "Function",
}

// KeyName normalizes an X keysym name. Letters become "KeyA".."KeyZ", digits
// "Num0".."Num9", function keys keep their name. Keysyms without a mapping are
// passed through; an empty keysym yields "Unknown(<code>)".
func KeyName(keysym string, code uint32) Key {
	if key, ok := keysymNames[keysym]; ok {
		return key
	}

	if len(keysym) == 1 {
		c := keysym[0]
		switch {
		case c >= 'a' && c <= 'z':
			return Key("Key" + strings.ToUpper(keysym))
		case c >= 'A' && c <= 'Z':
			return Key("Key" + keysym)
		case c >= '0' && c <= '9':
			return Key("Num" + keysym)
		}
	}

	if strings.HasPrefix(keysym, "KP_") && len(keysym) == 4 && keysym[3] >= '0' && keysym[3] <= '9' {
		return Key("Kp" + keysym[3:])
	}
	if isFunctionKey(keysym) {
		return Key(keysym)
	}

	if keysym == "" {
		return Key(fmt.Sprintf("Unknown(%d)", code))
	}
	return Key(keysym)
}

func isFunctionKey(keysym string) bool {
	if len(keysym) < 2 || len(keysym) > 3 || keysym[0] != 'F' {
		return false
	}
	for _, c := range keysym[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
