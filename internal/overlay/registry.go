package overlay

import (
	"errors"
	"fmt"
	"log/slog"
)

// Visibility is the shown/hidden state of a tracked window.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

// String returns the string representation of the visibility
func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Notifications delivered to the primary window instead of showing or hiding it.
const (
	EventShown  = "show-ui"
	EventHidden = "hide-ui"
)

// DefaultPrimaryLabel is the label of the main control surface.
const DefaultPrimaryLabel = "main"

// ErrEmptyLabel is returned when an overlay is requested without a label.
var ErrEmptyLabel = errors.New("overlay label must not be empty")

// Handle is an opaque, non-owning reference to a host window.
type Handle uint64

// Host is the windowing capability the registry drives. The host owns the
// underlying windows.
type Host interface {
	CreateWindow(d Descriptor) (Handle, error)
	ShowWindow(h Handle) error
	HideWindow(h Handle) error
}

// Notifier delivers a lifecycle notification to the surface with the given
// label. It reports false when no such surface is attached.
type Notifier interface {
	Notify(label, channel string, payload any) bool
}

// Predicate selects windows by label.
type Predicate func(label string) bool

// All matches every label.
func All(string) bool { return true }

// Entry is a snapshot of one tracked window.
type Entry struct {
	Descriptor Descriptor
	Handle     Handle
	Visibility Visibility
	Primary    bool
}

// Config configures a Registry.
type Config struct {
	Options      Options
	PrimaryLabel string
	Logger       *slog.Logger
}

// Registry maps labels to windows and mediates every lifecycle transition.
// It is not safe for concurrent use; the daemon loop is its only caller.
type Registry struct {
	host     Host
	notifier Notifier
	opts     Options
	primary  string
	logger   *slog.Logger

	entries map[string]*Entry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry(host Host, notifier Notifier, cfg Config) *Registry {
	primary := cfg.PrimaryLabel
	if primary == "" {
		primary = DefaultPrimaryLabel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		host:     host,
		notifier: notifier,
		opts:     cfg.Options,
		primary:  primary,
		logger:   logger,
		entries:  make(map[string]*Entry),
	}
}

// PrimaryLabel returns the label of the primary window.
func (r *Registry) PrimaryLabel() string {
	return r.primary
}

// Create ensures a window exists for label. If label is already registered it
// returns the existing entry with created=false and asks nothing of the host.
// A host failure is returned and nothing is registered. The primary label is
// registered without a host window: its surface is whatever subscribes under
// that label, and it only ever sees show-ui and hide-ui.
func (r *Registry) Create(label string) (entry Entry, created bool, err error) {
	if label == "" {
		return Entry{}, false, ErrEmptyLabel
	}
	if existing, ok := r.entries[label]; ok {
		return *existing, false, nil
	}

	desc := NewDescriptor(label, r.opts)
	var handle Handle
	if label != r.primary {
		handle, err = r.host.CreateWindow(desc)
		if err != nil {
			return Entry{}, false, fmt.Errorf("create overlay %q: %w", label, err)
		}
	}

	e := &Entry{
		Descriptor: desc,
		Handle:     handle,
		Visibility: Hidden,
		Primary:    label == r.primary,
	}
	if desc.Chrome.InitiallyVisible {
		e.Visibility = Visible
	}
	r.entries[label] = e
	r.order = append(r.order, label)

	r.logger.Info("overlay created", "label", label, "route", desc.Route, "handle", uint64(handle))
	return *e, true, nil
}

// SetVisibility shows or hides every tracked window matching match. The
// primary window is never shown or hidden directly: when it matches it is sent
// EventShown or EventHidden instead. The pass covers the registry as it was
// when the call began. Host failures are logged, leave that window's state
// unchanged, and are returned joined after the pass completes.
func (r *Registry) SetVisibility(match Predicate, v Visibility) error {
	if match == nil {
		match = All
	}
	snapshot := make([]string, len(r.order))
	copy(snapshot, r.order)

	if match(r.primary) && r.notifier != nil {
		event := EventHidden
		if v == Visible {
			event = EventShown
		}
		if !r.notifier.Notify(r.primary, event, nil) {
			r.logger.Debug("primary surface not attached", "label", r.primary, "event", event)
		}
		if e, ok := r.entries[r.primary]; ok {
			e.Visibility = v
		}
	}

	var errs []error
	for _, label := range snapshot {
		if label == r.primary || !match(label) {
			continue
		}
		e := r.entries[label]

		var err error
		if v == Visible {
			err = r.host.ShowWindow(e.Handle)
		} else {
			err = r.host.HideWindow(e.Handle)
		}
		if err != nil {
			r.logger.Warn("overlay visibility change failed", "label", label, "visibility", v.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s %q: %w", v, label, err))
			continue
		}
		e.Visibility = v
	}

	r.logger.Debug("overlay visibility applied", "visibility", v.String(), "windows", len(snapshot))
	return errors.Join(errs...)
}

func (r *Registry) visibility(label string) (Visibility, bool) {
	e, ok := r.entries[label]
	if !ok {
		return Hidden, false
	}
	return e.Visibility, true
}

// Len returns the number of tracked windows.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns all tracked windows in creation order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, *r.entries[label])
	}
	return out
}
