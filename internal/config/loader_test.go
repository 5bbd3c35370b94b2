package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{EnvAPIURL, EnvTimeout, EnvPageSize, EnvLogLevel, EnvRequireParams, EnvProxyURL}

// isolate points HOME and the working directory at empty temp dirs and
// unsets every APITRACK_* variable for the duration of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "apitrack")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()

	if got.APIURL != "http://localhost:8000" {
		t.Fatalf("APIURL = %q", got.APIURL)
	}
	if got.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %s, want 30s", got.Timeout)
	}
	if got.PageSize != 10 || got.LogPageSize != 10 || got.MaxPageButtons != 5 {
		t.Fatalf("paging defaults = %d/%d/%d", got.PageSize, got.LogPageSize, got.MaxPageButtons)
	}
	if got.RequireParamsForNonGET {
		t.Fatal("RequireParamsForNonGET = true, want false")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	isolate(t)

	if got, want := Load(), DefaultConfig(); got != want {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `api_url: https://tracker.internal
timeout: 42s
page_size: 25
max_page_buttons: 7
require_params_for_non_get: true
theme: nord
tls:
  ca_file: /etc/ca.pem
  insecure_skip_verify: true
`)

	got := Load()

	if got.APIURL != "https://tracker.internal" {
		t.Fatalf("APIURL = %q", got.APIURL)
	}
	if got.Timeout != 42*time.Second {
		t.Fatalf("Timeout = %s, want 42s", got.Timeout)
	}
	if got.PageSize != 25 || got.MaxPageButtons != 7 {
		t.Fatalf("PageSize = %d, MaxPageButtons = %d", got.PageSize, got.MaxPageButtons)
	}
	if !got.RequireParamsForNonGET || got.Theme != "nord" {
		t.Fatalf("got %#v", got)
	}
	if got.TLS.CAFile != "/etc/ca.pem" || !got.TLS.InsecureSkipVerify {
		t.Fatalf("TLS = %#v", got.TLS)
	}
	if got.LogPageSize != 10 {
		t.Fatalf("unset LogPageSize = %d, want default 10", got.LogPageSize)
	}
}

func TestLoadMergesPartialConfigWithDefaults(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "theme: gruvbox\n")

	got := Load()
	want := DefaultConfig()
	want.Theme = "gruvbox"

	if got != want {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
}

func TestLoadInvalidYAMLKeepsDefaults(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "theme: [\n")

	if got, want := Load(), DefaultConfig(); got != want {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "api_url: https://from-file\npage_size: 25\n")

	t.Setenv(EnvAPIURL, "https://from-env")
	t.Setenv(EnvTimeout, "5")
	t.Setenv(EnvPageSize, "not-a-number")
	t.Setenv(EnvRequireParams, "true")
	t.Setenv(EnvLogLevel, "debug")

	got := Load()
	if got.APIURL != "https://from-env" {
		t.Errorf("APIURL = %q", got.APIURL)
	}
	if got.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s", got.Timeout)
	}
	if got.PageSize != 25 {
		t.Errorf("invalid env page size should keep file value, got %d", got.PageSize)
	}
	if !got.RequireParamsForNonGET || got.LogLevel != "debug" {
		t.Errorf("got %#v", got)
	}
}

func TestDotEnvFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".env", []byte(EnvAPIURL+"=http://dotenv:9000\n"+EnvTimeout+"=1m\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv(EnvAPIURL)
		os.Unsetenv(EnvTimeout)
	})

	got := Load()
	if got.APIURL != "http://dotenv:9000" || got.Timeout != time.Minute {
		t.Fatalf("got %q %s", got.APIURL, got.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.APIURL = "/api" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"zero buttons", func(c *Config) { c.MaxPageButtons = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPaths(t *testing.T) {
	c := DefaultConfig()
	c.DataDir = "/tmp/at"
	if c.SessionPath() != filepath.Join("/tmp/at", "session.db") {
		t.Errorf("SessionPath = %s", c.SessionPath())
	}
	if c.LogPath() != filepath.Join("/tmp/at", "apitrack.log") {
		t.Errorf("LogPath = %s", c.LogPath())
	}
	c.LogFile = "/var/log/at.log"
	if c.LogPath() != "/var/log/at.log" {
		t.Errorf("LogPath = %s", c.LogPath())
	}
}

func TestTransportOptions(t *testing.T) {
	c := DefaultConfig()
	if c.Transport().TLS != nil {
		t.Error("empty TLS should not produce a TLS config")
	}
	c.TLS.InsecureSkipVerify = true
	c.ProxyURL = "socks5://127.0.0.1:1080"
	opts := c.Transport()
	if opts.TLS == nil || !opts.TLS.InsecureSkipVerify || opts.ProxyURL != c.ProxyURL || opts.Timeout != c.Timeout {
		t.Errorf("Transport() = %#v", opts)
	}
}
