package input

import (
	"fmt"
	"time"
)

// Kind identifies which variant an Event carries.
type Kind uint8

const (
	KindKeyDown Kind = iota + 1
	KindKeyUp
	KindButtonDown
	KindButtonUp
	KindScroll
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindKeyDown:
		return "key_down"
	case KindKeyUp:
		return "key_up"
	case KindButtonDown:
		return "button_down"
	case KindButtonUp:
		return "button_up"
	case KindScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button using X11 numbering.
type Button uint8

const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Name returns the button name the visualization front end expects.
func (b Button) Name() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonMiddle:
		return "Middle"
	case ButtonRight:
		return "Right"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(b))
	}
}

// Key is a normalized key name such as "KeyA", "ShiftLeft" or "Return".
type Key string

// ScrollDelta is a wheel step. Positive Y scrolls up, positive X scrolls right.
type ScrollDelta struct {
	X int64
	Y int64
}

// Event is a normalized input event. Kind selects which of Key/Code, Button or
// Delta is meaningful. Pointer motion is never represented.
type Event struct {
	Kind   Kind
	Key    Key
	Code   uint32
	Button Button
	Delta  ScrollDelta
	Time   time.Time
}

// KeyDown builds a key press event.
func KeyDown(key Key, code uint32) Event {
	return Event{Kind: KindKeyDown, Key: key, Code: code}
}

// KeyUp builds a key release event.
func KeyUp(key Key, code uint32) Event {
	return Event{Kind: KindKeyUp, Key: key, Code: code}
}

// ButtonDown builds a button press event.
func ButtonDown(b Button) Event {
	return Event{Kind: KindButtonDown, Button: b}
}

// ButtonUp builds a button release event.
func ButtonUp(b Button) Event {
	return Event{Kind: KindButtonUp, Button: b}
}

// Scroll builds a wheel event.
func Scroll(delta ScrollDelta) Event {
	return Event{Kind: KindScroll, Delta: delta}
}

// String renders a compact human-readable form, e.g. "key_down KeyA".
func (e Event) String() string {
	switch e.Kind {
	case KindKeyDown, KindKeyUp:
		return fmt.Sprintf("%s %s", e.Kind, e.Key)
	case KindButtonDown, KindButtonUp:
		return fmt.Sprintf("%s %s", e.Kind, e.Button.Name())
	case KindScroll:
		return fmt.Sprintf("%s dx=%d dy=%d", e.Kind, e.Delta.X, e.Delta.Y)
	default:
		return e.Kind.String()
	}
}
