package input

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wireEvent is the JSON shape consumed by the visualization front end:
//
//	{"time": "...", "event_type": {"KeyPress": "KeyA"}}
//	{"time": "...", "event_type": {"Wheel": {"delta_x": 0, "delta_y": -1}}}
type wireEvent struct {
	Time      time.Time     `json:"time"`
	EventType wireEventType `json:"event_type"`
}

type wireEventType struct {
	KeyPress      *string    `json:"KeyPress,omitempty"`
	KeyRelease    *string    `json:"KeyRelease,omitempty"`
	ButtonPress   *string    `json:"ButtonPress,omitempty"`
	ButtonRelease *string    `json:"ButtonRelease,omitempty"`
	Wheel         *wireWheel `json:"Wheel,omitempty"`
}

type wireWheel struct {
	DeltaX int64 `json:"delta_x"`
	DeltaY int64 `json:"delta_y"`
}

// MarshalJSON encodes the event in the front end's wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Time: e.Time.UTC()}
	switch e.Kind {
	case KindKeyDown:
		key := string(e.Key)
		w.EventType.KeyPress = &key
	case KindKeyUp:
		key := string(e.Key)
		w.EventType.KeyRelease = &key
	case KindButtonDown:
		name := e.Button.Name()
		w.EventType.ButtonPress = &name
	case KindButtonUp:
		name := e.Button.Name()
		w.EventType.ButtonRelease = &name
	case KindScroll:
		w.EventType.Wheel = &wireWheel{DeltaX: e.Delta.X, DeltaY: e.Delta.Y}
	default:
		return nil, fmt.Errorf("cannot encode event kind %d", e.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the front end's wire shape. The raw keycode is not part
// of the wire format and is left zero.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Event{Time: w.Time}
	et := w.EventType
	switch {
	case et.KeyPress != nil:
		out.Kind = KindKeyDown
		out.Key = Key(*et.KeyPress)
	case et.KeyRelease != nil:
		out.Kind = KindKeyUp
		out.Key = Key(*et.KeyRelease)
	case et.ButtonPress != nil:
		out.Kind = KindButtonDown
		out.Button = ParseButton(*et.ButtonPress)
	case et.ButtonRelease != nil:
		out.Kind = KindButtonUp
		out.Button = ParseButton(*et.ButtonRelease)
	case et.Wheel != nil:
		out.Kind = KindScroll
		out.Delta = ScrollDelta{X: et.Wheel.DeltaX, Y: et.Wheel.DeltaY}
	default:
		return fmt.Errorf("event_type has no known variant")
	}

	*e = out
	return nil
}

// ParseButton is the inverse of Button.Name. Unrecognized names yield 0.
func ParseButton(name string) Button {
	switch name {
	case "Left":
		return ButtonLeft
	case "Middle":
		return ButtonMiddle
	case "Right":
		return ButtonRight
	}
	if inner, ok := strings.CutPrefix(name, "Unknown("); ok {
		if n, err := strconv.ParseUint(strings.TrimSuffix(inner, ")"), 10, 8); err == nil {
			return Button(n)
		}
	}
	return 0
}
