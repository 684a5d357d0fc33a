package capture

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/inputviz/internal/input"
)

// Hook is a process-wide OS input hook. Listen attaches to the OS input
// subsystem and blocks, reporting every raw event to emit, until the hook is
// torn down. An error means the hook could not be installed or was lost.
type Hook interface {
	Listen(emit func(input.RawEvent)) error
}

// HookFunc adapts a function literal to the Hook interface.
type HookFunc func(emit func(input.RawEvent)) error

// Listen calls the underlying function.
func (f HookFunc) Listen(emit func(input.RawEvent)) error {
	return f(emit)
}

// Sink receives normalized events. Publish is called on the capture thread and
// must not block on UI work.
type Sink interface {
	Publish(input.Event)
}

// Stats counts events seen by the capture thread.
type Stats struct {
	Running   bool
	Forwarded uint64
	Dropped   uint64
}

// Thread owns the capture loop. It is started once and runs for the lifetime
// of the process; there is no stop path.
type Thread struct {
	hook   Hook
	sink   Sink
	logger *slog.Logger

	once      sync.Once
	done      chan struct{}
	running   atomic.Bool
	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

// NewThread creates a capture thread that filters hook events into sink.
func NewThread(hook Hook, sink Sink, logger *slog.Logger) *Thread {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thread{
		hook:   hook,
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the capture loop on a dedicated OS thread. Calls after the
// first are no-ops.
func (t *Thread) Start() {
	t.once.Do(func() {
		t.running.Store(true)
		go t.run()
	})
}

// Done is closed once the hook returns, which only happens on failure.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// Stats returns a snapshot of the capture counters.
func (t *Thread) Stats() Stats {
	return Stats{
		Running:   t.running.Load(),
		Forwarded: t.forwarded.Load(),
		Dropped:   t.dropped.Load(),
	}
}

func (t *Thread) run() {
	// The OS hook may carry thread affinity; keep the listen loop off the
	// scheduler's shared threads.
	runtime.LockOSThread()
	defer close(t.done)
	defer t.running.Store(false)

	err := t.listen()
	if err != nil {
		t.logger.Error("input capture unavailable", "error", err)
		return
	}
	t.logger.Warn("input hook returned; capture stopped")
}

func (t *Thread) listen() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("input hook panic: %v", r)
		}
	}()

	t.logger.Info("input capture started")
	return t.hook.Listen(t.handle)
}

func (t *Thread) handle(raw input.RawEvent) {
	ev, ok := input.Normalize(raw)
	if !ok {
		t.dropped.Add(1)
		return
	}
	t.forwarded.Add(1)
	t.sink.Publish(ev)
}
