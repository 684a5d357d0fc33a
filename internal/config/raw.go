package config

// Raw* types mirror the YAML document with pointer fields so an absent key can
// be told apart from a zero value when merging over defaults.

type RawTrayConfig struct {
	Mode    *string `yaml:"mode"`
	Tooltip *string `yaml:"tooltip"`
}

type RawOverlayConfig struct {
	Placement *string `yaml:"placement"`
	Title     *string `yaml:"title"`
}

type RawCaptureConfig struct {
	Enabled *bool `yaml:"enabled"`
	Motion  *bool `yaml:"motion"`
}

type RawBroadcastConfig struct {
	WarnBacklog *int `yaml:"warn_backlog"`
}

type RawConfig struct {
	Display      *string             `yaml:"display"`
	XAuthority   *string             `yaml:"xauthority"`
	EntryPage    *string             `yaml:"entry_page"`
	PrimaryLabel *string             `yaml:"primary_label"`
	EventChannel *string             `yaml:"event_channel"`
	Tray         *RawTrayConfig      `yaml:"tray"`
	Overlay      *RawOverlayConfig   `yaml:"overlay"`
	Capture      *RawCaptureConfig   `yaml:"capture"`
	Broadcast    *RawBroadcastConfig `yaml:"broadcast"`
	LogLevel     *string             `yaml:"log_level"`
	LogFormat    *string             `yaml:"log_format"`
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	setString(&cfg.Display, raw.Display)
	setString(&cfg.XAuthority, raw.XAuthority)
	setString(&cfg.EntryPage, raw.EntryPage)
	setString(&cfg.PrimaryLabel, raw.PrimaryLabel)
	setString(&cfg.EventChannel, raw.EventChannel)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.LogFormat, raw.LogFormat)

	if raw.Tray != nil {
		setString(&cfg.Tray.Mode, raw.Tray.Mode)
		setString(&cfg.Tray.Tooltip, raw.Tray.Tooltip)
	}
	if raw.Overlay != nil {
		setString(&cfg.Overlay.Placement, raw.Overlay.Placement)
		setString(&cfg.Overlay.Title, raw.Overlay.Title)
	}
	if raw.Capture != nil {
		if raw.Capture.Enabled != nil {
			cfg.Capture.Enabled = *raw.Capture.Enabled
		}
		if raw.Capture.Motion != nil {
			cfg.Capture.Motion = *raw.Capture.Motion
		}
	}
	if raw.Broadcast != nil && raw.Broadcast.WarnBacklog != nil {
		cfg.Broadcast.WarnBacklog = *raw.Broadcast.WarnBacklog
	}

	return cfg
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
