package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/sawchat/gobreaker"
	"gopkg.in/yaml.v3"
)

// Answer modes.
const (
	modeStream = "stream"
	modeBatch  = "batch"
)

const defaultConfigFile = ".sawchat/config.yaml"

type config struct {
	BaseURL     string           `yaml:"base_url"`
	StreamURL   string           `yaml:"stream_url"`
	APIKey      string           `yaml:"api_key"`
	UserID      string           `yaml:"user_id"`
	Operadora   string           `yaml:"operadora"`
	Mode        string           `yaml:"mode"`
	Timeout     time.Duration    `yaml:"timeout"`
	Pacing      time.Duration    `yaml:"pacing"`
	DownloadDir string           `yaml:"download_dir"`
	Breaker     gobreaker.Config `yaml:"breaker"`
	Log         logConfig        `yaml:"log"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

func defaultConfig() config {
	return config{
		BaseURL:     "http://localhost:8000",
		UserID:      "uni865",
		Mode:        modeStream,
		Timeout:     120 * time.Second,
		Pacing:      50 * time.Millisecond,
		DownloadDir: ".",
		Log:         logConfig{Level: "info", Format: "text"},
	}
}

// setting binds one configuration field to its environment variable and flag.
type setting struct {
	flag  string
	env   string
	usage string
	set   func(*config, string) error
}

var settings = []setting{
	{flag: "base-url", env: "API_BASE_URL", usage: "Agent service base URL",
		set: func(c *config, v string) error { c.BaseURL = v; return nil }},
	{flag: "stream-url", usage: "Full URL of the streaming endpoint (default: <base-url>/chat-stream)",
		set: func(c *config, v string) error { c.StreamURL = v; return nil }},
	{flag: "api-key", env: "API_KEY", usage: "API key sent as X-API-Key",
		set: func(c *config, v string) error { c.APIKey = v; return nil }},
	{flag: "user-id", env: "API_USER_ID", usage: "User id sent as X-User-Id",
		set: func(c *config, v string) error { c.UserID = v; return nil }},
	{flag: "operadora", env: "API_OPERADORA", usage: "Tenant sent as X-Operadora on batch requests",
		set: func(c *config, v string) error { c.Operadora = v; return nil }},
	{flag: "mode", env: "SAWCHAT_MODE", usage: "Answer mode: stream or batch",
		set: func(c *config, v string) error { c.Mode = v; return nil }},
	{flag: "timeout", usage: "Request timeout; streams fail after this long without data",
		set: func(c *config, v string) error { return setDuration(&c.Timeout, v) }},
	{flag: "pacing", usage: "Minimum delay between displayed progress updates (0 disables)",
		set: func(c *config, v string) error { return setDuration(&c.Pacing, v) }},
	{flag: "download-dir", usage: "Directory for saved reports",
		set: func(c *config, v string) error { c.DownloadDir = v; return nil }},
	{flag: "log", usage: "Log file (logs are discarded when empty)",
		set: func(c *config, v string) error { c.Log.Output = v; return nil }},
	{flag: "log-level", usage: "Log level: debug, info, warn, error",
		set: func(c *config, v string) error { c.Log.Level = v; return nil }},
	{flag: "log-format", usage: "Log format: text or json",
		set: func(c *config, v string) error { c.Log.Format = v; return nil }},
}

func setDuration(d *time.Duration, v string) error {
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// loadConfigFile merges the YAML file at path into cfg. A missing file is
// only an error when the path was given explicitly.
func loadConfigFile(cfg *config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return nil
	default:
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultConfigFile)
}

// applyEnv overrides cfg with the environment values found by lookup.
func applyEnv(cfg *config, lookup func(string) (string, bool)) error {
	for _, s := range settings {
		if s.env == "" {
			continue
		}
		v, ok := lookup(s.env)
		if !ok || v == "" {
			continue
		}
		if err := s.set(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", s.env, err)
		}
	}
	return nil
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cfg *config, set map[string]string) error {
	for _, s := range settings {
		v, ok := set[s.flag]
		if !ok {
			continue
		}
		if err := s.set(cfg, v); err != nil {
			return fmt.Errorf("-%s: %w", s.flag, err)
		}
	}
	return nil
}

func (c config) validate() error {
	switch c.Mode {
	case modeStream, modeBatch:
	default:
		return fmt.Errorf("unknown mode %q: must be %q or %q", c.Mode, modeStream, modeBatch)
	}
	if c.BaseURL == "" && c.StreamURL == "" {
		return errors.New("base URL is empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.Pacing < 0 {
		return fmt.Errorf("pacing must not be negative: %s", c.Pacing)
	}
	return nil
}
