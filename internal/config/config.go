package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Features  FeaturesConfig  `yaml:"features"`
	History   HistoryConfig   `yaml:"history"`
	UI        UIConfig        `yaml:"ui"`
	State     StateConfig     `yaml:"state"`
	Log       LogConfig       `yaml:"log"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Devserver DevserverConfig `yaml:"devserver"`
}

// ServerConfig points the client at the workout backend.
type ServerConfig struct {
	URL string `yaml:"url"`
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// FeaturesConfig selects which client behaviors are enabled.
type FeaturesConfig struct {
	Streaming  bool `yaml:"streaming"`
	WeeklyPlan bool `yaml:"weekly_plan"`
	Delete     bool `yaml:"delete"`
}

type HistoryConfig struct {
	Days int `yaml:"days"`
}

type UIConfig struct {
	StatusClearDelay time.Duration `yaml:"status_clear_delay"`
	WordWrap         int           `yaml:"word_wrap"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DevserverConfig configures the local development backend.
type DevserverConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`
	APIKey string `yaml:"api_key"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	stateDir := ".atlas"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".atlas")
	}
	return &Config{
		Server:   ServerConfig{URL: "http://127.0.0.1:5000"},
		Features: FeaturesConfig{Streaming: true, WeeklyPlan: true, Delete: true},
		History:  HistoryConfig{Days: 14},
		UI:       UIConfig{StatusClearDelay: 3 * time.Second, WordWrap: 100},
		State:    StateConfig{Dir: stateDir},
		Log:      LogConfig{Level: "info"},
		Tailscale: TailscaleConfig{
			Hostname: "atlas",
			StateDir: filepath.Join(stateDir, "tsnet"),
		},
		Devserver: DevserverConfig{
			Host:   "127.0.0.1",
			Port:   5000,
			DBPath: filepath.Join(stateDir, "workouts.db"),
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix ATLAS_:
//
//	ATLAS_SERVER_URL, ATLAS_SERVER_TIMEOUT,
//	ATLAS_STREAMING, ATLAS_WEEKLY_PLAN, ATLAS_DELETE,
//	ATLAS_HISTORY_DAYS, ATLAS_STATE_DIR, ATLAS_LOG_LEVEL,
//	ATLAS_TAILSCALE_ENABLED, ATLAS_TAILSCALE_HOSTNAME,
//	ATLAS_DEVSERVER_HOST, ATLAS_DEVSERVER_PORT, ATLAS_DEVSERVER_DB,
//	ATLAS_GEMINI_API_KEY
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATLAS_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("ATLAS_SERVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.Timeout = d
		}
	}
	envBool("ATLAS_STREAMING", &cfg.Features.Streaming)
	envBool("ATLAS_WEEKLY_PLAN", &cfg.Features.WeeklyPlan)
	envBool("ATLAS_DELETE", &cfg.Features.Delete)
	if v := os.Getenv("ATLAS_HISTORY_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.History.Days = days
		}
	}
	if v := os.Getenv("ATLAS_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("ATLAS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	envBool("ATLAS_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	if v := os.Getenv("ATLAS_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("ATLAS_DEVSERVER_HOST"); v != "" {
		cfg.Devserver.Host = v
	}
	if v := os.Getenv("ATLAS_DEVSERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Devserver.Port = port
		}
	}
	if v := os.Getenv("ATLAS_DEVSERVER_DB"); v != "" {
		cfg.Devserver.DBPath = v
	}
	if v := os.Getenv("ATLAS_GEMINI_API_KEY"); v != "" {
		cfg.Devserver.APIKey = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.url must be an http(s) URL, got %q", c.Server.URL)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}
	if c.History.Days <= 0 {
		return fmt.Errorf("history.days must be positive")
	}
	if c.UI.StatusClearDelay < 0 {
		return fmt.Errorf("ui.status_clear_delay must not be negative")
	}
	if c.UI.WordWrap <= 0 {
		return fmt.Errorf("ui.word_wrap must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Devserver.Port < 0 || c.Devserver.Port > 65535 {
		return fmt.Errorf("devserver.port out of range")
	}
	return nil
}
