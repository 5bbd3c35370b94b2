package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/apitrack/internal/transport"
)

// Config holds the application configuration.
type Config struct {
	APIURL                 string              `yaml:"api_url"`
	Timeout                time.Duration       `yaml:"timeout"`
	PageSize               int                 `yaml:"page_size"`
	LogPageSize            int                 `yaml:"log_page_size"`
	MaxPageButtons         int                 `yaml:"max_page_buttons"`
	RequireParamsForNonGET bool                `yaml:"require_params_for_non_get"`
	Theme                  string              `yaml:"theme"`
	VimMode                bool                `yaml:"vim_mode"`
	ProxyURL               string              `yaml:"proxy_url"`
	NoProxy                string              `yaml:"no_proxy"`
	TLS                    transport.TLSConfig `yaml:"tls"`
	LogFile                string              `yaml:"log_file"`
	LogLevel               string              `yaml:"log_level"`
	DataDir                string              `yaml:"data_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		Timeout:        30 * time.Second,
		PageSize:       10,
		LogPageSize:    10,
		MaxPageButtons: 5,
		Theme:          "catppuccin-mocha",
		VimMode:        true,
		LogLevel:       "info",
	}
}

// PageSizeChoices are the rows-per-page options offered by the list view.
var PageSizeChoices = []int{5, 10, 25}

// Validate reports settings that would make the client unusable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not an absolute URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < 1 || c.LogPageSize < 1 {
		return fmt.Errorf("page sizes must be at least 1")
	}
	if c.MaxPageButtons < 1 {
		return fmt.Errorf("max_page_buttons must be at least 1")
	}
	return nil
}

// Dir returns the data directory, defaulting to ~/.config/apitrack.
func (c Config) Dir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".apitrack"
	}
	return filepath.Join(home, ".config", "apitrack")
}

// SessionPath is the bbolt file holding saved login tokens.
func (c Config) SessionPath() string {
	return filepath.Join(c.Dir(), "session.db")
}

// LogPath is where the TUI writes its log records.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.Dir(), "apitrack.log")
}

// Transport returns the HTTP client options for the gateway.
func (c Config) Transport() transport.Options {
	opts := transport.Options{
		Timeout:  c.Timeout,
		ProxyURL: c.ProxyURL,
		NoProxy:  c.NoProxy,
	}
	if !c.TLS.IsEmpty() {
		tlsCfg := c.TLS
		opts.TLS = &tlsCfg
	}
	return opts
}
