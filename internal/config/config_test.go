package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestConfig creates a temp HOME with ~/.config/phonebook/config.json.
func writeTestConfig(t *testing.T, cfg *Config) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	dir := filepath.Join(tmpDir, ".config", "phonebook")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"PHONEBOOK_URL", "PHONEBOOK_RESOURCE", "PHONEBOOK_API_KEY", "PHONEBOOK_TIMEOUT", "PHONEBOOK_STATUS_DELAY"} {
		t.Setenv(k, "")
	}
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	s := Resolve()
	if s.ServerURL != DefaultServerURL || s.Resource != DefaultResource {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Timeout != DefaultTimeout || s.StatusDelay != 2*time.Second {
		t.Errorf("unexpected durations: %+v", s)
	}
	if s.APIKey != "" {
		t.Errorf("expected no api key, got %q", s.APIKey)
	}
}

func TestResolveFromFile(t *testing.T) {
	writeTestConfig(t, &Config{ServerURL: "http://books:9000", Resource: "contacts", StatusDelay: "5s"})
	clearEnv(t)

	s := Resolve()
	if s.ServerURL != "http://books:9000" || s.Resource != "contacts" {
		t.Errorf("file values ignored: %+v", s)
	}
	if s.StatusDelay != 5*time.Second {
		t.Errorf("status delay = %v", s.StatusDelay)
	}
}

func TestResolveEnvOverridesFile(t *testing.T) {
	writeTestConfig(t, &Config{ServerURL: "http://books:9000", Timeout: "3s"})
	clearEnv(t)
	t.Setenv("PHONEBOOK_URL", "http://env:1")
	t.Setenv("PHONEBOOK_TIMEOUT", "7s")

	s := Resolve()
	if s.ServerURL != "http://env:1" {
		t.Errorf("ServerURL = %q", s.ServerURL)
	}
	if s.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v", s.Timeout)
	}
}

func TestResolveInvalidDurationFallsThrough(t *testing.T) {
	writeTestConfig(t, &Config{Timeout: "soon"})
	clearEnv(t)
	t.Setenv("PHONEBOOK_STATUS_DELAY", "-1s")

	s := Resolve()
	if s.Timeout != DefaultTimeout || s.StatusDelay != DefaultStatusDelay {
		t.Errorf("invalid durations should use defaults: %+v", s)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Config{}
	if err := cfg.Set("api_key", "secret"); err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.APIKey != "secret" {
		t.Errorf("APIKey = %q", got.APIKey)
	}

	dir, _ := Dir()
	info, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestSetGetValidation(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Error("expected unknown key error")
	}
	if err := cfg.Set("timeout", "fast"); err == nil {
		t.Error("expected invalid duration error")
	}
	if err := cfg.Set("timeout", "4s"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := cfg.Get("timeout"); v != "4s" {
		t.Errorf("Get = %q", v)
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("expected unknown key error")
	}
	if len(Keys()) != 5 || Keys()[0] != "api_key" {
		t.Errorf("Keys = %v", Keys())
	}
}

func TestLoadDotenvIfPresent(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if err := os.WriteFile(".env", []byte("PHONEBOOK_RESOURCE=from-dotenv\nPHONEBOOK_URL=http://dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PHONEBOOK_ENV", "")
	t.Setenv("PHONEBOOK_RESOURCE", "")
	t.Setenv("PHONEBOOK_URL", "http://already-set")
	os.Unsetenv("PHONEBOOK_RESOURCE")

	LoadDotenvIfPresent()

	if got := os.Getenv("PHONEBOOK_RESOURCE"); got != "from-dotenv" {
		t.Errorf("PHONEBOOK_RESOURCE = %q", got)
	}
	if got := os.Getenv("PHONEBOOK_URL"); got != "http://already-set" {
		t.Errorf("existing env must win, got %q", got)
	}
}
