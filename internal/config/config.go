// Package config resolves phonebook settings from flags, environment,
// ~/.config/phonebook/config.json and built-in defaults, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	DefaultServerURL   = "http://localhost:3001"
	DefaultResource    = "persons"
	DefaultTimeout     = 10 * time.Second
	DefaultStatusDelay = 2 * time.Second
)

// Config is the on-disk config file.
type Config struct {
	ServerURL   string `json:"server_url,omitempty"`
	Resource    string `json:"resource,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	Timeout     string `json:"timeout,omitempty"`      // duration string
	StatusDelay string `json:"status_delay,omitempty"` // duration string
}

// Settings are the fully resolved values the commands run with.
type Settings struct {
	ServerURL   string
	Resource    string
	APIKey      string
	Timeout     time.Duration
	StatusDelay time.Duration
}

// keys maps config keys to their field accessors.
var keys = map[string]func(*Config) *string{
	"server_url":   func(c *Config) *string { return &c.ServerURL },
	"resource":     func(c *Config) *string { return &c.Resource },
	"api_key":      func(c *Config) *string { return &c.APIKey },
	"timeout":      func(c *Config) *string { return &c.Timeout },
	"status_delay": func(c *Config) *string { return &c.StatusDelay },
}

// Keys returns the supported config keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set assigns a config key, validating duration values.
func (c *Config) Set(key, val string) error {
	field, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if key == "timeout" || key == "status_delay" {
		if d, err := time.ParseDuration(val); err != nil || d <= 0 {
			return fmt.Errorf("invalid duration %q for %s", val, key)
		}
	}
	*field(c) = val
	return nil
}

// Get reads a config key.
func (c *Config) Get(key string) (string, error) {
	field, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return *field(c), nil
}

// Dir returns ~/.config/phonebook, creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "phonebook")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Load reads the config file; a missing file is an empty config.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config file atomically (temp file + rename).
// The file may hold an API key, so it is written 0600.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, "config.json"))
}

// Resolve merges env > config file > defaults. A config file that cannot be
// read is ignored so a broken file never blocks the CLI.
func Resolve() Settings {
	cfg, err := Load()
	if err != nil {
		cfg = &Config{}
	}
	return Settings{
		ServerURL:   pick("PHONEBOOK_URL", cfg.ServerURL, DefaultServerURL),
		Resource:    pick("PHONEBOOK_RESOURCE", cfg.Resource, DefaultResource),
		APIKey:      pick("PHONEBOOK_API_KEY", cfg.APIKey, ""),
		Timeout:     pickDuration("PHONEBOOK_TIMEOUT", cfg.Timeout, DefaultTimeout),
		StatusDelay: pickDuration("PHONEBOOK_STATUS_DELAY", cfg.StatusDelay, DefaultStatusDelay),
	}
}

func pick(envKey, fileVal, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if fileVal != "" {
		return fileVal
	}
	return def
}

func pickDuration(envKey, fileVal string, def time.Duration) time.Duration {
	if v := os.Getenv(envKey); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	if fileVal != "" {
		if d, err := time.ParseDuration(fileVal); err == nil && d > 0 {
			return d
		}
	}
	return def
}
