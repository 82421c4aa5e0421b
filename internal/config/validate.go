package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case "sqlite":
			c.Storage.Path = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
		case "file":
			c.Storage.Path = filepath.Join(c.Paths.DataDir, defaultJSONFile)
		}
	}
	if c.Storage.Path, err = ExpandPath(c.Storage.Path); err != nil {
		return fmt.Errorf("storage.path: %w", err)
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Audio.Mode = strings.ToLower(strings.TrimSpace(c.Audio.Mode))
	if c.Audio.SamplePath, err = ExpandPath(strings.TrimSpace(c.Audio.SamplePath)); err != nil {
		return fmt.Errorf("audio.sample_path: %w", err)
	}
	c.Audio.Player = strings.TrimSpace(c.Audio.Player)
	c.Search.YouTubeAPIKey = strings.TrimSpace(c.Search.YouTubeAPIKey)
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "sqlite", "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unsupported %q", c.Storage.Driver))
	}
	if c.Timers.HighlightSeconds < 0 {
		errs = append(errs, errors.New("timers.highlight_seconds: must not be negative"))
	}
	if c.Alarms.ScanIntervalSeconds < 1 || c.Alarms.ScanIntervalSeconds > maxScanIntervalSecond {
		errs = append(errs, fmt.Errorf("alarms.scan_interval_seconds: must be between 1 and %d", maxScanIntervalSecond))
	}
	if c.Alarms.HighlightSeconds < 0 {
		errs = append(errs, errors.New("alarms.highlight_seconds: must not be negative"))
	}
	if c.Notifications.ToastSeconds <= 0 {
		errs = append(errs, errors.New("notifications.toast_seconds: must be positive"))
	}
	if c.Notifications.MaxToasts <= 0 {
		errs = append(errs, errors.New("notifications.max_toasts: must be positive"))
	}
	if c.Notifications.RequestTimeout <= 0 {
		errs = append(errs, errors.New("notifications.request_timeout: must be positive"))
	}
	switch c.Audio.Mode {
	case "tone", "bell", "off", "":
	case "sample":
		if c.Audio.SamplePath == "" {
			errs = append(errs, errors.New("audio.sample_path: required for sample mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("audio.mode: unsupported %q", c.Audio.Mode))
	}
	if c.Search.CacheTTLSeconds <= 0 {
		errs = append(errs, errors.New("search.cache_ttl_seconds: must be positive"))
	}
	if c.Search.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("search.timeout_seconds: must be positive"))
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 50 {
		errs = append(errs, errors.New("search.max_results: must be between 1 and 50"))
	}
	switch c.Logging.Format {
	case "auto", "json", "text", "":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unsupported %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
