package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnv lets FOCUSDECK_* variables override file values. Malformed
// numbers and booleans are ignored.
func (c *Config) applyEnv() {
	if v, ok := getEnvString("FOCUSDECK_DATA_DIR"); ok {
		c.Paths.DataDir = v
	}
	if v, ok := getEnvString("FOCUSDECK_LOG_DIR"); ok {
		c.Paths.LogDir = v
	}
	if v, ok := getEnvString("FOCUSDECK_STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvString("FOCUSDECK_STORAGE_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := getEnvInt("FOCUSDECK_ALARM_SCAN_SECONDS"); ok && v > 0 {
		c.Alarms.ScanIntervalSeconds = v
	}
	if v, ok := getEnvInt("FOCUSDECK_TOAST_SECONDS"); ok && v > 0 {
		c.Notifications.ToastSeconds = v
	}
	if v, ok := getEnvBool("FOCUSDECK_DESKTOP_NOTIFICATIONS"); ok {
		c.Notifications.Desktop = v
	}
	if v, ok := getEnvString("FOCUSDECK_NTFY_TOPIC"); ok {
		c.Notifications.NtfyTopic = v
	}
	if v, ok := getEnvString("FOCUSDECK_AUDIO_MODE"); ok {
		c.Audio.Mode = v
	}
	if v, ok := getEnvString("FOCUSDECK_YOUTUBE_API_KEY"); ok {
		c.Search.YouTubeAPIKey = v
	}
	if v, ok := getEnvString("FOCUSDECK_BIND"); ok {
		c.Server.Bind = v
	}
	if v, ok := getEnvString("FOCUSDECK_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := getEnvString("FOCUSDECK_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
