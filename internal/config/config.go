package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

type Storage struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type Timers struct {
	HighlightSeconds int `toml:"highlight_seconds"`
}

type Alarms struct {
	ScanIntervalSeconds int `toml:"scan_interval_seconds"`
	HighlightSeconds    int `toml:"highlight_seconds"`
}

type Notifications struct {
	ToastSeconds   int    `toml:"toast_seconds"`
	MaxToasts      int    `toml:"max_toasts"`
	Desktop        bool   `toml:"desktop"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

type Audio struct {
	Mode       string `toml:"mode"`
	SamplePath string `toml:"sample_path"`
	Player     string `toml:"player"`
}

type Search struct {
	YouTubeAPIKey   string `toml:"youtube_api_key"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	MaxResults      int    `toml:"max_results"`
}

type Server struct {
	Bind string `toml:"bind"`
}

type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

type Config struct {
	Paths         Paths         `toml:"paths"`
	Storage       Storage       `toml:"storage"`
	Timers        Timers        `toml:"timers"`
	Alarms        Alarms        `toml:"alarms"`
	Notifications Notifications `toml:"notifications"`
	Audio         Audio         `toml:"audio"`
	Search        Search        `toml:"search"`
	Server        Server        `toml:"server"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath honors XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "focusdeck", "config.toml"), nil
	}
	return ExpandPath("~/.config/focusdeck/config.toml")
}

// Load reads path (or the default location), applies environment overrides,
// normalizes and validates. A missing file is not an error; exists reports
// whether one was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// CreateSample writes the commented default configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode writes the effective configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) TimerHighlight() time.Duration {
	return time.Duration(c.Timers.HighlightSeconds) * time.Second
}

func (c *Config) AlarmHighlight() time.Duration {
	return time.Duration(c.Alarms.HighlightSeconds) * time.Second
}

func (c *Config) AlarmScanInterval() time.Duration {
	return time.Duration(c.Alarms.ScanIntervalSeconds) * time.Second
}

func (c *Config) ToastTTL() time.Duration {
	return time.Duration(c.Notifications.ToastSeconds) * time.Second
}

func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLSeconds) * time.Second
}

func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// LogFile is where the terminal dashboard sends its logs.
func (c *Config) LogFile() string {
	return filepath.Join(c.Paths.LogDir, "focusdeck.log")
}

// ExpandPath resolves a leading ~ and cleans the result.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if strings.HasPrefix(pathValue, "~/") {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}
