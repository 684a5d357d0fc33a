package broadcast

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/inputviz/internal/input"
)

// DefaultChannel is the channel name input events are emitted under.
const DefaultChannel = "input-event"

// ErrTargetClosed is returned by a Target whose surface has gone away. The
// broadcaster detaches such targets.
var ErrTargetClosed = errors.New("target closed")

// Target is one live surface. Deliver is called from the target's own
// delivery goroutine, never from the capture thread.
type Target interface {
	Deliver(channel string, payload any) error
}

// TargetFunc adapts a function literal to the Target interface.
type TargetFunc func(channel string, payload any) error

// Deliver calls the underlying function.
func (f TargetFunc) Deliver(channel string, payload any) error {
	return f(channel, payload)
}

// Options configures a Broadcaster.
type Options struct {
	// Channel is the name input events are emitted under (default "input-event").
	Channel string
	// WarnBacklog logs a warning when a target's queue reaches this depth.
	// Zero disables the warning.
	WarnBacklog int
	Logger      *slog.Logger
}

// Broadcaster fans normalized events out to every attached target. Publish is
// fire-and-forget: each target has its own unbounded mailbox drained by a
// dedicated goroutine, so a slow or dead surface never stalls the caller and
// events for one target arrive in emission order.
type Broadcaster struct {
	channel     string
	warnBacklog int
	logger      *slog.Logger

	mu      sync.Mutex
	targets atomic.Pointer[map[string]*mailbox]
	closed  bool
}

// New creates a broadcaster with no targets.
func New(opts Options) *Broadcaster {
	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Broadcaster{
		channel:     channel,
		warnBacklog: opts.WarnBacklog,
		logger:      logger,
	}
	empty := map[string]*mailbox{}
	b.targets.Store(&empty)
	return b
}

// Channel returns the channel name input events are emitted under.
func (b *Broadcaster) Channel() string {
	return b.channel
}

// Attach registers target under label, replacing any previous target with the
// same label. The returned function detaches it.
func (b *Broadcaster) Attach(label string, target Target) (detach func()) {
	mb := newMailbox(b, label, target)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	current := *b.targets.Load()
	next := make(map[string]*mailbox, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	previous := next[label]
	next[label] = mb
	b.targets.Store(&next)
	b.mu.Unlock()

	if previous != nil {
		previous.close()
	}
	go mb.run()

	b.logger.Debug("broadcast target attached", "target", label)
	return func() { b.detach(label, mb) }
}

// Publish queues ev for every attached target and returns immediately.
func (b *Broadcaster) Publish(ev input.Event) {
	for _, mb := range *b.targets.Load() {
		mb.push(message{channel: b.channel, payload: ev})
	}
}

// Notify queues a payload for a single target on the given channel. It
// reports whether the target was attached. Notifications share the target's
// mailbox, so they are ordered with respect to published events.
func (b *Broadcaster) Notify(label, channel string, payload any) bool {
	mb, ok := (*b.targets.Load())[label]
	if !ok {
		return false
	}
	return mb.push(message{channel: channel, payload: payload})
}

// Targets returns the attached target labels in sorted order.
func (b *Broadcaster) Targets() []string {
	current := *b.targets.Load()
	labels := make([]string, 0, len(current))
	for label := range current {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Close detaches every target. Queued messages are discarded.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	current := *b.targets.Load()
	empty := map[string]*mailbox{}
	b.targets.Store(&empty)
	b.mu.Unlock()

	for _, mb := range current {
		mb.close()
	}
}

func (b *Broadcaster) detach(label string, mb *mailbox) {
	b.mu.Lock()
	current := *b.targets.Load()
	if current[label] != mb {
		b.mu.Unlock()
		mb.close()
		return
	}
	next := make(map[string]*mailbox, len(current))
	for k, v := range current {
		if k != label {
			next[k] = v
		}
	}
	b.targets.Store(&next)
	b.mu.Unlock()

	mb.close()
	b.logger.Debug("broadcast target detached", "target", label)
}

type message struct {
	channel string
	payload any
}

type mailbox struct {
	owner  *Broadcaster
	label  string
	target Target

	mu     sync.Mutex
	queue  []message
	closed bool
	warned bool
	wake   chan struct{}
	done   chan struct{}
}

func newMailbox(owner *Broadcaster, label string, target Target) *mailbox {
	return &mailbox{
		owner:  owner,
		label:  label,
		target: target,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (m *mailbox) push(msg message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	depth := len(m.queue)
	warn := false
	if limit := m.owner.warnBacklog; limit > 0 {
		if depth >= limit && !m.warned {
			m.warned = true
			warn = true
		} else if depth < limit/2 {
			m.warned = false
		}
	}
	m.mu.Unlock()

	if warn {
		m.owner.logger.Warn("broadcast target falling behind", "target", m.label, "queued", depth)
	}

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return true
}

func (m *mailbox) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.queue = nil
	m.mu.Unlock()
	close(m.done)
}

func (m *mailbox) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.wake:
		}

		m.mu.Lock()
		batch := m.queue
		m.queue = nil
		m.mu.Unlock()

		for _, msg := range batch {
			select {
			case <-m.done:
				return
			default:
			}

			err := m.target.Deliver(msg.channel, msg.payload)
			if err == nil {
				continue
			}
			if errors.Is(err, ErrTargetClosed) {
				m.owner.logger.Info("broadcast target gone; dropping", "target", m.label, "channel", msg.channel)
				m.owner.detach(m.label, m)
				return
			}
			m.owner.logger.Warn("broadcast delivery failed", "target", m.label, "channel", msg.channel, "error", err)
		}
	}
}
