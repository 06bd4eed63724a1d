package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Explorer.RefreshDelay() != 2*time.Second {
		t.Errorf("refresh delay = %v", cfg.Explorer.RefreshDelay())
	}
	if !cfg.Explorer.AutoRefreshOrDefault() || cfg.Explorer.ShowMembers {
		t.Error("explorer toggles not at defaults")
	}
	if cfg.LSP.CommandOrDefault() != "jdtls" || cfg.LSP.ReadyTimeout() != time.Minute {
		t.Errorf("lsp defaults = %q %v", cfg.LSP.CommandOrDefault(), cfg.LSP.ReadyTimeout())
	}
	if !cfg.History.EnabledOrDefault() || cfg.History.PathOrDefault("/d") != filepath.Join("/d", "history.db") {
		t.Error("history defaults wrong")
	}
	if cfg.UI.SyntaxThemeOrDefault() != "vulcan" {
		t.Errorf("theme = %q", cfg.UI.SyntaxThemeOrDefault())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[lsp]
command = "jdtls -data /tmp/ws"
bundles = ["/opt/ext/com.microsoft.jdtls.ext.core.jar"]
launch_mode = "Standard"
ready_timeout_seconds = 5

[lsp.settings.java.import.gradle]
enabled = false

[explorer]
refresh_delay_ms = 500
auto_refresh = false
show_members = true

[export]
proceed_on_build_error = true

[history]
enabled = false
retention_days = 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LSP.Command != "jdtls -data /tmp/ws" || len(cfg.LSP.Bundles) != 1 {
		t.Errorf("lsp = %+v", cfg.LSP)
	}
	if cfg.LSP.ReadyTimeout() != 5*time.Second {
		t.Errorf("ready timeout = %v", cfg.LSP.ReadyTimeout())
	}
	if _, ok := cfg.LSP.Settings["java"]; !ok {
		t.Errorf("settings = %v", cfg.LSP.Settings)
	}
	if cfg.Explorer.RefreshDelay() != 500*time.Millisecond || cfg.Explorer.AutoRefreshOrDefault() || !cfg.Explorer.ShowMembers {
		t.Errorf("explorer = %+v", cfg.Explorer)
	}
	if !cfg.Export.ProceedOnBuildError {
		t.Error("proceed_on_build_error not read")
	}
	if cfg.History.EnabledOrDefault() || cfg.History.Retention() != 30*24*time.Hour {
		t.Errorf("history = %+v", cfg.History)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JPX_JDTLS_COMMAND", "/opt/jdtls/bin/jdtls")
	t.Setenv("JPX_REFRESH_DELAY", "250")
	t.Setenv("JPX_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "[lsp]\ncommand = \"jdtls\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LSP.Command != "/opt/jdtls/bin/jdtls" {
		t.Errorf("command = %q", cfg.LSP.Command)
	}
	if cfg.Explorer.RefreshDelay() != 250*time.Millisecond {
		t.Errorf("delay = %v", cfg.Explorer.RefreshDelay())
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestValidateAggregates(t *testing.T) {
	t.Setenv("JPX_REFRESH_DELAY", "soon")
	path := writeConfig(t, `
log_level = "chatty"
[lsp]
launch_mode = "Turbo"
bundles = ["ext.zip"]
[explorer]
refresh_delay_ms = -1
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"JPX_REFRESH_DELAY", "log_level", "launch_mode", "bundles[0]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestParseError(t *testing.T) {
	if _, err := Load(writeConfig(t, "[lsp\ncommand=")); err == nil {
		t.Fatal("expected parse error")
	}
}
