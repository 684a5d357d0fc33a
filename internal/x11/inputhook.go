package x11

import (
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/record"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/1broseidon/inputviz/internal/input"
)

// KeyNamer resolves a keycode to its keysym name.
type KeyNamer interface {
	KeyName(code uint32) string
}

// InputHook is a global input hook built on the RECORD extension. The
// context intercepts device events for all clients before they are delivered,
// so no grab is taken and focus does not matter.
type InputHook struct {
	// Display to listen on; empty means $DISPLAY.
	Display string
	// Motion also records pointer motion.
	Motion bool
	Keys   KeyNamer
	// Now stamps events; defaults to time.Now.
	Now func() time.Time
}

// Listen creates a record context on a control connection, enables it on a
// second data connection and blocks, emitting every event, until either
// connection fails.
func (h *InputHook) Listen(emit func(input.RawEvent)) error {
	ctrl, err := xgb.NewConnDisplay(h.Display)
	if err != nil {
		return errors.Wrapf(err, "connect to X display %q", h.Display)
	}
	defer ctrl.Close()

	if err := record.Init(ctrl); err != nil {
		return errors.Wrap(err, "RECORD extension unavailable")
	}
	rc, err := record.NewContextId(ctrl)
	if err != nil {
		return errors.Wrap(err, "allocate record context")
	}
	clients := []record.ClientSpec{record.CsAllClients}
	ranges := []record.Range{h.deviceRange()}
	if err := record.CreateContextChecked(ctrl, rc, 0,
		uint32(len(clients)), uint32(len(ranges)), clients, ranges).Check(); err != nil {
		return errors.Wrap(err, "RecordCreateContext")
	}
	defer record.FreeContext(ctrl, rc)
	// Disabling from the control side ends the data stream.
	defer record.DisableContext(ctrl, rc)

	stream, err := dialRecordStream(h.Display)
	if err != nil {
		return err
	}
	data, err := stream.connect()
	if err != nil {
		return errors.Wrap(err, "open record data connection")
	}
	defer data.Close()
	defer stream.stop()

	if err := record.Init(data); err != nil {
		return errors.Wrap(err, "RECORD extension unavailable on data connection")
	}
	stream.arm(recordOpcode(data))

	failed := make(chan error, 1)
	cookie := record.EnableContext(data, rc)
	go func() {
		// Only an error or a closed connection completes this cookie.
		_, err := cookie.Reply()
		if err == nil {
			err = errors.New("record context enable returned early")
		}
		failed <- err
	}()

	for {
		select {
		case frame, ok := <-stream.replies:
			if !ok {
				return errors.Errorf("record data connection closed: %v", stream.err())
			}
			category, elements := recordReply(frame)
			switch category {
			case recordFromServer:
				for _, raw := range h.decode(elements) {
					emit(raw)
				}
			case recordEndOfData:
				return errors.New("record context disabled")
			}
		case err := <-failed:
			return errors.Wrap(err, "RecordEnableContext")
		}
	}
}

// deviceRange selects core device events, KeyPress through ButtonRelease, or
// through MotionNotify when motion is wanted.
func (h *InputHook) deviceRange() record.Range {
	last := byte(xproto.ButtonRelease)
	if h.Motion {
		last = xproto.MotionNotify
	}
	return record.Range{DeviceEvents: record.Range8{First: xproto.KeyPress, Last: last}}
}

// Record reply categories.
const (
	recordFromServer  = 0
	recordStartOfData = 4
	recordEndOfData   = 5
)

// recordReply splits an EnableContext reply frame into its category and the
// recorded protocol elements.
func recordReply(frame []byte) (byte, []byte) {
	if len(frame) < 32 {
		return recordStartOfData, nil
	}
	size := int(xgb.Get32(frame[4:])) * 4
	if 32+size > len(frame) {
		size = len(frame) - 32
	}
	return frame[1], frame[32 : 32+size]
}

// decode turns recorded elements into raw events. Device events are always
// 32 bytes; anything that does not translate is skipped.
func (h *InputHook) decode(elements []byte) []input.RawEvent {
	var out []input.RawEvent
	for len(elements) >= 32 {
		if ev, ok := coreEvent(elements[:32]); ok {
			if raw, ok := h.translate(ev); ok {
				out = append(out, raw)
			}
		}
		elements = elements[32:]
	}
	return out
}

func coreEvent(buf []byte) (xgb.Event, bool) {
	switch buf[0] & 0x7f {
	case xproto.KeyPress:
		return xproto.KeyPressEventNew(buf), true
	case xproto.KeyRelease:
		return xproto.KeyReleaseEventNew(buf), true
	case xproto.ButtonPress:
		return xproto.ButtonPressEventNew(buf), true
	case xproto.ButtonRelease:
		return xproto.ButtonReleaseEventNew(buf), true
	case xproto.MotionNotify:
		return xproto.MotionNotifyEventNew(buf), true
	default:
		return nil, false
	}
}

func (h *InputHook) translate(ev xgb.Event) (input.RawEvent, bool) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		return h.keyEvent(input.RawKeyPress, uint32(e.Detail)), true
	case xproto.KeyReleaseEvent:
		return h.keyEvent(input.RawKeyRelease, uint32(e.Detail)), true
	case xproto.ButtonPressEvent:
		return buttonEvent(e.Detail, true, h.now())
	case xproto.ButtonReleaseEvent:
		return buttonEvent(e.Detail, false, h.now())
	case xproto.MotionNotifyEvent:
		return input.RawEvent{Kind: input.RawMotion, X: float64(e.RootX), Y: float64(e.RootY), Time: h.now()}, true
	default:
		return input.RawEvent{}, false
	}
}

func (h *InputHook) keyEvent(kind input.RawKind, code uint32) input.RawEvent {
	keysym := ""
	if h.Keys != nil {
		keysym = h.Keys.KeyName(code)
	}
	return input.RawEvent{
		Kind: kind,
		Code: code,
		Key:  input.KeyName(keysym, code),
		Time: h.now(),
	}
}

func (h *InputHook) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// X core button numbers 4-7 are wheel steps.
const (
	buttonWheelUp    = 4
	buttonWheelDown  = 5
	buttonWheelLeft  = 6
	buttonWheelRight = 7
)

// buttonEvent maps an X button number to a raw event. Wheel buttons produce
// one scroll step on press; their release is dropped.
func buttonEvent(detail xproto.Button, pressed bool, at time.Time) (input.RawEvent, bool) {
	var delta input.ScrollDelta
	switch detail {
	case buttonWheelUp:
		delta.Y = 1
	case buttonWheelDown:
		delta.Y = -1
	case buttonWheelLeft:
		delta.X = -1
	case buttonWheelRight:
		delta.X = 1
	default:
		kind := input.RawButtonRelease
		if pressed {
			kind = input.RawButtonPress
		}
		return input.RawEvent{Kind: kind, Button: input.Button(detail), Time: at}, true
	}
	if !pressed {
		return input.RawEvent{}, false
	}
	return input.RawEvent{Kind: input.RawWheel, Delta: delta, Time: at}, true
}
