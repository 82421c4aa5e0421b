package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("expected missing file at %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Storage.Driver != "sqlite" || !strings.HasSuffix(cfg.Storage.Path, "focusdeck.db") {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Paths.LogDir != filepath.Join(cfg.Paths.DataDir, "logs") {
		t.Fatalf("expected log dir under data dir, got %s", cfg.Paths.LogDir)
	}
	if cfg.ToastTTL() != 5*time.Second || cfg.AlarmScanInterval() != 30*time.Second {
		t.Fatalf("unexpected durations toast=%s scan=%s", cfg.ToastTTL(), cfg.AlarmScanInterval())
	}
	if cfg.SearchCacheTTL() != 5*time.Minute || cfg.SearchTimeout() != 7*time.Second || cfg.Search.MaxResults != 10 {
		t.Fatalf("unexpected search defaults %+v", cfg.Search)
	}
	if cfg.TimerHighlight() != 5*time.Second || cfg.AlarmHighlight() != 10*time.Second {
		t.Fatal("unexpected highlight defaults")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.ToSlash(dir) + `"

[storage]
driver = "FILE"

[alarms]
scan_interval_seconds = 15

[search]
youtube_api_key = " file-key "
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FOCUSDECK_YOUTUBE_API_KEY", "env-key")
	t.Setenv("FOCUSDECK_DESKTOP_NOTIFICATIONS", "off")
	t.Setenv("FOCUSDECK_TOAST_SECONDS", "nope")

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to exist")
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != filepath.Join(dir, "local_storage.json") {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Alarms.ScanIntervalSeconds != 15 {
		t.Fatalf("expected scan interval from file, got %d", cfg.Alarms.ScanIntervalSeconds)
	}
	if cfg.Search.YouTubeAPIKey != "env-key" {
		t.Fatalf("expected env override, got %q", cfg.Search.YouTubeAPIKey)
	}
	if cfg.Notifications.Desktop {
		t.Fatal("expected desktop notifications disabled by env")
	}
	if cfg.Notifications.ToastSeconds != 5 {
		t.Fatal("malformed env ints must be ignored")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"scan":    "[alarms]\nscan_interval_seconds = 120\n",
		"driver":  "[storage]\ndriver = \"postgres\"\n",
		"audio":   "[audio]\nmode = \"sample\"\n",
		"unknown": "[server]\nport = 80\n",
		"syntax":  "[server\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".toml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, _, _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists || cfg.Server.Bind != "127.0.0.1:7420" || cfg.Audio.Mode != "tone" {
		t.Fatalf("unexpected sample config %+v", cfg)
	}

	var out strings.Builder
	if err := cfg.Encode(&out); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(out.String(), "[search]") || !strings.Contains(out.String(), "127.0.0.1:7420") {
		t.Fatalf("unexpected encoding:\n%s", out.String())
	}
}

func TestDefaultConfigPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if got != filepath.Join(dir, "focusdeck", "config.toml") {
		t.Fatalf("unexpected path %s", got)
	}
}
