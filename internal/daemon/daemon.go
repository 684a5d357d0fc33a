package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/inputviz/internal/broadcast"
	"github.com/1broseidon/inputviz/internal/capture"
	"github.com/1broseidon/inputviz/internal/config"
	"github.com/1broseidon/inputviz/internal/ipc"
	"github.com/1broseidon/inputviz/internal/overlay"
	"github.com/1broseidon/inputviz/internal/platform"
	"github.com/1broseidon/inputviz/internal/tray"
)

// ErrLoopStopped is returned when a request arrives after shutdown began.
var ErrLoopStopped = errors.New("daemon is shutting down")

// Options configures a Daemon.
type Options struct {
	Config  *config.Config
	Backend platform.Backend
	// Hook overrides the backend's input hook.
	Hook   capture.Hook
	Logger *slog.Logger
	// SocketPath overrides the IPC socket location.
	SocketPath string
}

// Daemon wires the capture thread, broadcaster, overlay registry, tray and
// IPC server together.
type Daemon struct {
	cfg     *config.Config
	backend platform.Backend
	hook    capture.Hook
	logger  *slog.Logger
	socket  string
	started time.Time

	loop        *Loop
	broadcaster *broadcast.Broadcaster
	registry    *overlay.Registry
	controller  *tray.Controller
	capture     *capture.Thread
	server      *ipc.Server

	quitOnce sync.Once
	quit     chan struct{}
}

var _ ipc.Controller = (*Daemon)(nil)

// New builds a daemon. Nothing runs until Run.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("daemon: config is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("daemon: window backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	d := &Daemon{
		cfg:     cfg,
		backend: opts.Backend,
		hook:    opts.Hook,
		logger:  logger,
		socket:  opts.SocketPath,
		loop:    NewLoop(logger.With("component", "loop")),
		quit:    make(chan struct{}),
	}
	if d.hook == nil {
		d.hook = opts.Backend.InputHook()
	}

	d.broadcaster = broadcast.New(broadcast.Options{
		Channel:     cfg.EventChannel,
		WarnBacklog: cfg.Broadcast.WarnBacklog,
		Logger:      logger.With("component", "broadcast"),
	})

	transparent := opts.Backend.SupportsTransparency()
	if !transparent {
		logger.Info("no compositor detected; overlays will be opaque")
	}
	d.registry = overlay.NewRegistry(opts.Backend, d.broadcaster, overlay.Config{
		Options: overlay.Options{
			EntryPage:   cfg.EntryPage,
			Title:       cfg.Overlay.Title,
			Placement:   overlay.Placement(cfg.Overlay.Placement),
			Transparent: transparent,
		},
		PrimaryLabel: cfg.PrimaryLabel,
		Logger:       logger.With("component", "overlay"),
	})
	d.controller = tray.NewController(d.registry, d.exit, logger.With("component", "tray"))
	d.capture = capture.NewThread(d.hook, d.broadcaster, logger.With("component", "capture"))

	return d, nil
}

// exit is the tray's Quit path. Only code 0 is ever requested.
func (d *Daemon) exit(code int) {
	d.quitOnce.Do(func() {
		d.logger.Info("quit requested", "code", code)
		close(d.quit)
	})
}

// Run starts every component and blocks until ctx is cancelled or Quit is
// chosen. Both are a clean exit and return nil.
func (d *Daemon) Run(ctx context.Context) error {
	d.started = time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go d.loop.Run(ctx)

	server, err := ipc.NewServer(d.socket, d, d.logger.With("component", "ipc"))
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	d.server = server
	defer server.Stop()

	mode := tray.Mode(d.cfg.Tray.Mode)
	var trayReady <-chan struct{}
	if mode != tray.ModeOff {
		icon := tray.New(tray.Options{
			Mode:    mode,
			Tooltip: d.cfg.Tray.Tooltip,
			Logger:  d.logger.With("component", "systray"),
		}, d.MenuSelect)
		trayReady = icon.Ready()
		go func() {
			if err := icon.Run(ctx); err != nil {
				d.logger.Warn("tray unavailable", "error", err)
			}
		}()
	}

	go d.backend.EventLoop()
	defer d.backend.Disconnect()
	defer d.backend.Quit()
	defer d.broadcaster.Close()

	if displays, err := d.backend.Displays(); err != nil {
		d.logger.Warn("failed to enumerate displays", "error", err)
	} else {
		for _, disp := range displays {
			d.logger.Debug("display", "id", disp.ID, "name", disp.Name,
				"x", disp.Bounds.X, "y", disp.Bounds.Y, "width", disp.Bounds.Width, "height", disp.Bounds.Height)
		}
	}

	// Capture starts last so events only flow once the surfaces exist.
	d.waitTray(ctx, trayReady)
	var captureDone <-chan struct{}
	if d.cfg.Capture.Enabled {
		d.capture.Start()
		captureDone = d.capture.Done()
	} else {
		d.logger.Info("input capture disabled")
	}

	d.logger.Info("inputviz daemon started",
		"channel", d.broadcaster.Channel(),
		"primary", d.registry.PrimaryLabel(),
		"tray", string(mode),
		"socket", server.SocketPath())

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down", "reason", ctx.Err())
			return nil
		case <-d.quit:
			d.logger.Info("shutting down", "reason", "quit")
			return nil
		case <-captureDone:
			d.logger.Warn("input capture ended; overlays and control stay up")
			captureDone = nil
		}
	}
}

// trayReadyTimeout bounds how long capture waits for the tray menu.
const trayReadyTimeout = 5 * time.Second

func (d *Daemon) waitTray(ctx context.Context, ready <-chan struct{}) {
	if ready == nil {
		return
	}
	select {
	case <-ready:
	case <-ctx.Done():
	case <-time.After(trayReadyTimeout):
		d.logger.Warn("tray not ready; starting capture without it", "timeout", trayReadyTimeout)
	}
}

// CreateWindow ensures an overlay exists for label.
func (d *Daemon) CreateWindow(label string) (ipc.WindowInfo, bool, error) {
	var (
		entry   overlay.Entry
		created bool
		err     error
	)
	if !d.loop.Call(func() { entry, created, err = d.registry.Create(label) }) {
		return ipc.WindowInfo{}, false, ErrLoopStopped
	}
	if err != nil {
		return ipc.WindowInfo{}, false, err
	}
	return windowInfo(entry), created, nil
}

// Dispatch performs a tray action on the loop.
func (d *Daemon) Dispatch(action tray.Action) error {
	var err error
	if !d.loop.Call(func() { err = d.controller.Dispatch(action) }) {
		return ErrLoopStopped
	}
	return err
}

// MenuSelect handles a tray click. Unknown ids are ignored.
func (d *Daemon) MenuSelect(id string) {
	d.loop.Post(func() {
		if err := d.controller.HandleMenuID(id); err != nil {
			d.logger.Warn("tray action failed", "id", id, "error", err)
		}
	})
}

// Windows lists tracked overlays in creation order.
func (d *Daemon) Windows() []ipc.WindowInfo {
	var entries []overlay.Entry
	d.loop.Call(func() { entries = d.registry.Entries() })
	out := make([]ipc.WindowInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, windowInfo(e))
	}
	return out
}

// Status reports daemon health.
func (d *Daemon) Status() ipc.StatusData {
	stats := d.capture.Stats()
	count := 0
	d.loop.Call(func() { count = d.registry.Len() })
	return ipc.StatusData{
		DaemonRunning:   true,
		UptimeSeconds:   int64(time.Since(d.started).Seconds()),
		CaptureRunning:  stats.Running,
		EventsForwarded: stats.Forwarded,
		EventsDropped:   stats.Dropped,
		WindowCount:     count,
		Targets:         d.broadcaster.Targets(),
		Channel:         d.broadcaster.Channel(),
		TrayMode:        d.cfg.Tray.Mode,
		Transparent:     d.backend.SupportsTransparency(),
	}
}

// Subscribe attaches target to the broadcaster under label.
func (d *Daemon) Subscribe(label string, target broadcast.Target) func() {
	return d.broadcaster.Attach(label, target)
}

func windowInfo(e overlay.Entry) ipc.WindowInfo {
	return ipc.WindowInfo{
		Label:      e.Descriptor.Label,
		Route:      e.Descriptor.Route,
		Title:      e.Descriptor.Title,
		Handle:     uint64(e.Handle),
		Visibility: e.Visibility.String(),
		Primary:    e.Primary,
	}
}
