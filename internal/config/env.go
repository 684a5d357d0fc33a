package config

import (
	"os"
	"strconv"
)

const (
	EnvDisplay     = "INPUTVIZ_DISPLAY"
	EnvLogLevel    = "INPUTVIZ_LOG_LEVEL"
	EnvLogFormat   = "INPUTVIZ_LOG_FORMAT"
	EnvTrayMode    = "INPUTVIZ_TRAY_MODE"
	EnvCapture     = "INPUTVIZ_CAPTURE"
	EnvWarnBacklog = "INPUTVIZ_WARN_BACKLOG"
)

// LoadFromEnv applies environment variable overrides to cfg and returns the
// sources of the values it changed. Unparsable numeric or boolean values are
// ignored.
func LoadFromEnv(cfg *Config) map[string]Source {
	sources := map[string]Source{}
	setFromEnv := func(path, name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
			sources[path] = Source{Kind: SourceEnv, Name: name}
		}
	}

	setFromEnv("display", EnvDisplay, &cfg.Display)
	setFromEnv("log_level", EnvLogLevel, &cfg.LogLevel)
	setFromEnv("log_format", EnvLogFormat, &cfg.LogFormat)
	setFromEnv("tray.mode", EnvTrayMode, &cfg.Tray.Mode)

	if v := os.Getenv(EnvCapture); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Capture.Enabled = enabled
			sources["capture.enabled"] = Source{Kind: SourceEnv, Name: EnvCapture}
		}
	}

	if v := os.Getenv(EnvWarnBacklog); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Broadcast.WarnBacklog = n
			sources["broadcast.warn_backlog"] = Source{Kind: SourceEnv, Name: EnvWarnBacklog}
		}
	}

	return sources
}
