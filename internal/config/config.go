package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/inputviz/internal/tray"
)

type TrayConfig struct {
	Mode    string `yaml:"mode"`
	Tooltip string `yaml:"tooltip,omitempty"`
}

type OverlayConfig struct {
	Placement string `yaml:"placement"`
	Title     string `yaml:"title"`
}

type CaptureConfig struct {
	Enabled bool `yaml:"enabled"`
	// Motion asks the hook to deliver pointer motion. Motion is still filtered
	// out before broadcast.
	Motion bool `yaml:"motion"`
}

type BroadcastConfig struct {
	WarnBacklog int `yaml:"warn_backlog"`
}

type Config struct {
	Display      string          `yaml:"display,omitempty"`
	XAuthority   string          `yaml:"xauthority,omitempty"`
	EntryPage    string          `yaml:"entry_page"`
	PrimaryLabel string          `yaml:"primary_label"`
	EventChannel string          `yaml:"event_channel"`
	Tray         TrayConfig      `yaml:"tray"`
	Overlay      OverlayConfig   `yaml:"overlay"`
	Capture      CaptureConfig   `yaml:"capture"`
	Broadcast    BroadcastConfig `yaml:"broadcast"`
	LogLevel     string          `yaml:"log_level"`
	LogFormat    string          `yaml:"log_format"`
}

func DefaultConfig() *Config {
	return &Config{
		EntryPage:    "index.html",
		PrimaryLabel: "main",
		EventChannel: "input-event",
		Tray: TrayConfig{
			Mode:    "full",
			Tooltip: "inputviz",
		},
		Overlay: OverlayConfig{
			Placement: "origin",
			Title:     "input-viz-key",
		},
		Capture: CaptureConfig{
			Enabled: true,
		},
		Broadcast: BroadcastConfig{
			WarnBacklog: 1024,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.EntryPage) == "" {
		return &ValidationError{Path: "entry_page", Err: fmt.Errorf("entry_page is required")}
	}
	if strings.Contains(c.EntryPage, "#") {
		return &ValidationError{Path: "entry_page", Err: fmt.Errorf("entry_page must not contain '#'")}
	}
	if strings.TrimSpace(c.PrimaryLabel) == "" {
		return &ValidationError{Path: "primary_label", Err: fmt.Errorf("primary_label is required")}
	}
	if strings.TrimSpace(c.EventChannel) == "" {
		return &ValidationError{Path: "event_channel", Err: fmt.Errorf("event_channel is required")}
	}
	if _, err := tray.ParseMode(c.Tray.Mode); err != nil {
		return &ValidationError{Path: "tray.mode", Err: err}
	}
	switch c.Overlay.Placement {
	case "origin", "offscreen":
	default:
		return &ValidationError{Path: "overlay.placement", Err: fmt.Errorf("overlay.placement must be one of: origin, offscreen")}
	}
	if c.Broadcast.WarnBacklog < 0 {
		return &ValidationError{Path: "broadcast.warn_backlog", Err: fmt.Errorf("warn_backlog must be >= 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return &ValidationError{Path: "log_format", Err: fmt.Errorf("log_format must be one of: text, json")}
	}
	return nil
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("%s (from $%s): %v", e.Path, e.Source.Name, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
