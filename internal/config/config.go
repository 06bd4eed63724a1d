// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Launch modes accepted by the language server.
const (
	LaunchStandard    = "Standard"
	LaunchLightweight = "LightWeight"
	LaunchHybrid      = "Hybrid"
)

// Config is the root configuration structure.
type Config struct {
	LogLevel string         `toml:"log_level"`
	LSP      LSPConfig      `toml:"lsp"`
	Explorer ExplorerConfig `toml:"explorer"`
	Export   ExportConfig   `toml:"export"`
	UI       UIConfig       `toml:"ui"`
	History  HistoryConfig  `toml:"history"`
}

// LSPConfig describes how to start the Java language server.
type LSPConfig struct {
	// Command is the launch command line, split with shell rules.
	Command string `toml:"command"`
	// Bundles are extension jars passed in initializationOptions.
	Bundles             []string       `toml:"bundles"`
	DataDir             string         `toml:"data_dir"`
	LaunchMode          string         `toml:"launch_mode"`
	ReadyTimeoutSeconds int            `toml:"ready_timeout_seconds"`
	Settings            map[string]any `toml:"settings"`
}

// CommandOrDefault returns the configured command or "jdtls".
func (l LSPConfig) CommandOrDefault() string {
	if strings.TrimSpace(l.Command) == "" {
		return "jdtls"
	}
	return l.Command
}

// ReadyTimeout returns how long to wait for the server to report ready,
// 60 seconds if unset.
func (l LSPConfig) ReadyTimeout() time.Duration {
	if l.ReadyTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(l.ReadyTimeoutSeconds) * time.Second
}

// ExplorerConfig holds project tree settings.
type ExplorerConfig struct {
	RefreshDelayMS int   `toml:"refresh_delay_ms"`
	AutoRefresh    *bool `toml:"auto_refresh"`
	ShowMembers    bool  `toml:"show_members"`
}

// RefreshDelay returns the debounce window of tree refreshes, 2 seconds if
// unset.
func (e ExplorerConfig) RefreshDelay() time.Duration {
	if e.RefreshDelayMS <= 0 {
		return 2000 * time.Millisecond
	}
	return time.Duration(e.RefreshDelayMS) * time.Millisecond
}

// AutoRefreshOrDefault reports whether file changes refresh the tree. On by
// default.
func (e ExplorerConfig) AutoRefreshOrDefault() bool {
	return e.AutoRefresh == nil || *e.AutoRefresh
}

// ExportConfig holds jar export settings.
type ExportConfig struct {
	ProceedOnBuildError bool `toml:"proceed_on_build_error"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma theme for source views. UI chrome colors are
	// derived from it via highlight.ThemePalette.
	SyntaxTheme string `toml:"syntax_theme"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "vulcan" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "vulcan"
	}
	return u.SyntaxTheme
}

// HistoryConfig holds export history settings.
type HistoryConfig struct {
	Enabled       *bool  `toml:"enabled"`
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// EnabledOrDefault reports whether exports are recorded. On by default.
func (h HistoryConfig) EnabledOrDefault() bool {
	return h.Enabled == nil || *h.Enabled
}

// PathOrDefault returns the database path, history.db in dataDir if unset.
func (h HistoryConfig) PathOrDefault(dataDir string) string {
	if h.Path == "" {
		return filepath.Join(dataDir, "history.db")
	}
	return h.Path
}

// Retention returns how long records are kept; 0 keeps them forever.
func (h HistoryConfig) Retention() time.Duration {
	if h.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(h.RetentionDays) * 24 * time.Hour
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	envErrs := applyEnvOverrides(cfg)

	if err := errors.Join(append(envErrs, cfg.Validate())...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("log_level=%q is invalid", c.LogLevel))
		}
	}

	switch c.LSP.LaunchMode {
	case "", LaunchStandard, LaunchLightweight, LaunchHybrid:
	default:
		errs = append(errs, fmt.Errorf("lsp.launch_mode=%q must be one of %s, %s, %s",
			c.LSP.LaunchMode, LaunchStandard, LaunchLightweight, LaunchHybrid))
	}
	if c.LSP.ReadyTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("lsp.ready_timeout_seconds=%d must not be negative", c.LSP.ReadyTimeoutSeconds))
	}
	for i, b := range c.LSP.Bundles {
		if !strings.HasSuffix(strings.ToLower(b), ".jar") {
			errs = append(errs, fmt.Errorf("lsp.bundles[%d]=%q is not a jar", i, b))
		}
	}

	if c.Explorer.RefreshDelayMS < 0 {
		errs = append(errs, fmt.Errorf("explorer.refresh_delay_ms=%d must not be negative", c.Explorer.RefreshDelayMS))
	}
	if c.History.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("history.retention_days=%d must not be negative", c.History.RetentionDays))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) []error {
	var errs []error
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"JPX_JDTLS_COMMAND", func(v string) {
			if v != "" {
				cfg.LSP.Command = v
			}
		}},
		{"JPX_REFRESH_DELAY", func(v string) {
			if v == "" {
				return
			}
			ms, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("JPX_REFRESH_DELAY=%q is not a number of milliseconds", v))
				return
			}
			cfg.Explorer.RefreshDelayMS = ms
		}},
		{"JPX_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.LogLevel = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
	return errs
}

// DataDir returns the path to the jpx data directory (~/.config/jpx).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jpx"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns ~/.config/jpx/config.toml.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
