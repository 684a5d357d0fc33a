package tray

import (
	"context"
	"log/slog"
	"sync"

	"fyne.io/systray"
)

// Options configures the system tray icon.
type Options struct {
	Mode    Mode
	Tooltip string
	Logger  *slog.Logger
}

// Tray installs the status-area icon and forwards menu clicks as menu ids.
// No activation handler is registered, so a primary click opens the menu.
type Tray struct {
	opts     Options
	onSelect func(id string)
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a tray. onSelect receives the id of every clicked menu item and
// is called from the tray goroutine; callers hand it off to their own loop.
func New(opts Options, onSelect func(id string)) *Tray {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Mode == "" {
		opts.Mode = ModeFull
	}
	return &Tray{opts: opts, onSelect: onSelect, logger: logger, ready: make(chan struct{})}
}

// Ready is closed once the menu is installed, or once Run has given up on
// installing it.
func (t *Tray) Ready() <-chan struct{} {
	return t.ready
}

func (t *Tray) markReady() {
	t.readyOnce.Do(func() { close(t.ready) })
}

// Run installs the icon and blocks until ctx is cancelled.
func (t *Tray) Run(ctx context.Context) error {
	defer t.markReady()
	if t.opts.Mode == ModeOff {
		t.markReady()
		<-ctx.Done()
		return nil
	}

	icon, err := RenderIcon("K")
	if err != nil {
		return err
	}

	start, end := systray.RunWithExternalLoop(func() {
		systray.SetIcon(icon)
		systray.SetTitle("inputviz")
		if t.opts.Tooltip != "" {
			systray.SetTooltip(t.opts.Tooltip)
		}
		for _, item := range MenuItems(t.opts.Mode) {
			if item.ID == IDQuit && t.opts.Mode == ModeFull {
				systray.AddSeparator()
			}
			mi := systray.AddMenuItem(item.Title, item.Tip)
			go t.forward(ctx, item.ID, mi.ClickedCh)
		}
		t.markReady()
	}, func() {
		t.logger.Debug("tray icon removed")
	})

	start()
	select {
	case <-t.ready:
		t.logger.Info("tray icon installed", "mode", string(t.opts.Mode))
	case <-ctx.Done():
	}

	<-ctx.Done()
	end()
	return nil
}

func (t *Tray) forward(ctx context.Context, id string, clicks <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-clicks:
			t.logger.Debug("tray menu clicked", "id", id)
			if t.onSelect != nil {
				t.onSelect(id)
			}
		}
	}
}
