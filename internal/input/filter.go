package input

import "time"

// RawKind classifies an event as the OS hook reports it.
type RawKind uint8

const (
	RawKeyPress RawKind = iota + 1
	RawKeyRelease
	RawButtonPress
	RawButtonRelease
	RawWheel
	RawMotion
)

// RawEvent is an OS-level input event before filtering.
type RawEvent struct {
	Kind   RawKind
	Code   uint32
	Key    Key
	Button Button
	Delta  ScrollDelta
	X, Y   float64
	Time   time.Time
}

// kindTable maps raw kinds to normalized kinds. A zero entry drops the event;
// RawMotion is deliberately absent.
var kindTable = [...]Kind{
	RawKeyPress:      KindKeyDown,
	RawKeyRelease:    KindKeyUp,
	RawButtonPress:   KindButtonDown,
	RawButtonRelease: KindButtonUp,
	RawWheel:         KindScroll,
	RawMotion:        0,
}

// Normalize converts a raw hook event into an Event. It reports false for
// pointer motion and for kinds it does not know, which are never forwarded.
// It runs on every OS callback and does no allocation.
func Normalize(raw RawEvent) (Event, bool) {
	if int(raw.Kind) >= len(kindTable) {
		return Event{}, false
	}
	kind := kindTable[raw.Kind]
	if kind == 0 {
		return Event{}, false
	}
	return Event{
		Kind:   kind,
		Key:    raw.Key,
		Code:   raw.Code,
		Button: raw.Button,
		Delta:  raw.Delta,
		Time:   raw.Time,
	}, true
}
