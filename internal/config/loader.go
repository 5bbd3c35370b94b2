package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvAPIURL        = "APITRACK_API_URL"
	EnvTimeout       = "APITRACK_TIMEOUT"
	EnvPageSize      = "APITRACK_PAGE_SIZE"
	EnvLogLevel      = "APITRACK_LOG_LEVEL"
	EnvRequireParams = "APITRACK_REQUIRE_PARAMS"
	EnvProxyURL      = "APITRACK_PROXY_URL"
)

// DefaultPath returns ~/.config/apitrack/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "apitrack", "config.yaml")
}

// Load loads configuration from ~/.config/apitrack/config.yaml, then a .env
// file in the working directory, then APITRACK_* environment variables.
func Load() Config {
	return LoadFrom(DefaultPath())
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) Config {
	cfg := DefaultConfig()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			fromFile := cfg
			if err := yaml.Unmarshal(data, &fromFile); err == nil {
				cfg = fromFile
			}
		}
	}

	// .env never overrides variables already set in the process.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := parseTimeout(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvRequireParams); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.RequireParamsForNonGET = b
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvProxyURL)); v != "" {
		cfg.ProxyURL = v
	}
}

// parseTimeout accepts Go durations ("45s") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
