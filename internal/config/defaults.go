package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultBind           = "127.0.0.1:7420"
	defaultSQLiteFile     = "focusdeck.db"
	defaultJSONFile       = "local_storage.json"
	maxScanIntervalSecond = 60
)

func defaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "focusdeck")
	}
	return "~/.local/share/focusdeck"
}

func Default() Config {
	return Config{
		Paths:   Paths{DataDir: defaultDataDir()},
		Storage: Storage{Driver: "sqlite"},
		Timers:  Timers{HighlightSeconds: 5},
		Alarms: Alarms{
			ScanIntervalSeconds: 30,
			HighlightSeconds:    10,
		},
		Notifications: Notifications{
			ToastSeconds:   5,
			MaxToasts:      50,
			Desktop:        true,
			RequestTimeout: 10,
		},
		Audio: Audio{Mode: "tone"},
		Search: Search{
			CacheTTLSeconds: 300,
			TimeoutSeconds:  7,
			MaxResults:      10,
		},
		Server:  Server{Bind: defaultBind},
		Logging: Logging{Format: "auto", Level: "info"},
	}
}
