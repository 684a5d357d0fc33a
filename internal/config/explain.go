package config

import (
	"fmt"
	"sort"
)

// Explain returns the effective value at a YAML path and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, ok := fieldsOf(res.Config)[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown config path %q", path)
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// Paths lists every explainable path in sorted order.
func Paths() []string {
	fields := fieldsOf(DefaultConfig())
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fieldsOf(c *Config) map[string]any {
	return map[string]any{
		"display":                c.Display,
		"xauthority":             c.XAuthority,
		"entry_page":             c.EntryPage,
		"primary_label":          c.PrimaryLabel,
		"event_channel":          c.EventChannel,
		"tray.mode":              c.Tray.Mode,
		"tray.tooltip":           c.Tray.Tooltip,
		"overlay.placement":      c.Overlay.Placement,
		"overlay.title":          c.Overlay.Title,
		"capture.enabled":        c.Capture.Enabled,
		"capture.motion":         c.Capture.Motion,
		"broadcast.warn_backlog": c.Broadcast.WarnBacklog,
		"log_level":              c.LogLevel,
		"log_format":             c.LogFormat,
	}
}
