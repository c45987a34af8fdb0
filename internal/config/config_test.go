// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestConfig_Default tests that Default() returns a valid config.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Remote.CatalogURL != "https://infinitymc.ru/ih/info.json" {
		t.Errorf("Unexpected catalog URL %q", cfg.Remote.CatalogURL)
	}
	if cfg.Remote.Timeout() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.Remote.Timeout())
	}
	if cfg.Install.Workspace != "ia" {
		t.Errorf("Expected workspace 'ia', got %q", cfg.Install.Workspace)
	}
	if strings.Join(cfg.Install.Languages, ",") != "en,ru" {
		t.Errorf("Expected languages en,ru, got %v", cfg.Install.Languages)
	}
	if cfg.Install.StrictExitCodes || cfg.Install.IgnoreSetupExitStatus || cfg.Install.DevMode {
		t.Error("Behavior flags should default to false")
	}
	if !cfg.UI.ClearScreen {
		t.Error("Clear screen should default to true")
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{
			name:    "non-http catalog url",
			modify:  func(c *Config) { c.Remote.CatalogURL = "ftp://example.com/info.json" },
			wantErr: "remote.catalog_url",
		},
		{
			name:    "messages url without placeholder",
			modify:  func(c *Config) { c.Remote.MessagesURL = "https://example.com/en.json" },
			wantErr: "remote.messages_url",
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Remote.TimeoutSecs = 0 },
			wantErr: "remote.timeout_secs",
		},
		{
			name:    "bad language",
			modify:  func(c *Config) { c.Install.Language = "not a language" },
			wantErr: "install.language",
		},
		{
			name:    "empty language list",
			modify:  func(c *Config) { c.Install.Languages = nil },
			wantErr: "install.languages",
		},
		{
			name:    "workspace is current directory",
			modify:  func(c *Config) { c.Install.Workspace = "./" },
			wantErr: "install.workspace",
		},
		{
			name:    "workspace is parent directory",
			modify:  func(c *Config) { c.Install.Workspace = ".." },
			wantErr: "install.workspace",
		},
		{
			name:    "workspace escapes through parent",
			modify:  func(c *Config) { c.Install.Workspace = "../x" },
			wantErr: "install.workspace",
		},
		{
			name:    "workspace climbs out of subdirectory",
			modify:  func(c *Config) { c.Install.Workspace = "sub/../.." },
			wantErr: "install.workspace",
		},
		{
			name:    "workspace is filesystem root",
			modify:  func(c *Config) { c.Install.Workspace = "/" },
			wantErr: "install.workspace",
		},
		{
			name:    "interpreter without dot",
			modify:  func(c *Config) { c.Install.Interpreters = map[string][]string{"py": {"python3"}} },
			wantErr: "install.interpreters",
		},
		{
			name:    "empty interpreter",
			modify:  func(c *Config) { c.Install.Interpreters = map[string][]string{".py": {}} },
			wantErr: "install.interpreters",
		},
		{
			name:    "negative progress interval",
			modify:  func(c *Config) { c.UI.ProgressIntervalMs = -1 },
			wantErr: "ui.progress_interval_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error mentioning %q", tt.wantErr)
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() should return ValidateErrors, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromPath_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[remote]
catalog_url = "https://mirror.example.com/info.json"

[install]
language = "ru"
strict_exit_codes = true

[install.interpreters]
".py" = ["python3.12"]

[ui]
tui = true
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Remote.CatalogURL != "https://mirror.example.com/info.json" {
		t.Errorf("catalog_url not loaded: %q", cfg.Remote.CatalogURL)
	}
	if cfg.Remote.MessagesURL != Default().Remote.MessagesURL {
		t.Errorf("messages_url should keep its default, got %q", cfg.Remote.MessagesURL)
	}
	if cfg.Install.Language != "ru" || !cfg.Install.StrictExitCodes {
		t.Errorf("install section not loaded: %+v", cfg.Install)
	}
	if got := cfg.Install.Interpreters[".py"]; len(got) != 1 || got[0] != "python3.12" {
		t.Errorf("interpreters not loaded: %v", cfg.Install.Interpreters)
	}
	if !cfg.UI.TUI || !cfg.UI.ClearScreen {
		t.Errorf("ui section not merged: %+v", cfg.UI)
	}
	if cfg.Install.Workspace != "ia" {
		t.Errorf("workspace should keep its default, got %q", cfg.Install.Workspace)
	}
}

func TestLoadFromPath_EmptyValuesFallBack(t *testing.T) {
	path := writeConfig(t, `
[install]
workspace = ""
languages = []
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Install.Workspace != "ia" || len(cfg.Install.Languages) != 2 {
		t.Errorf("empty values should fall back to defaults: %+v", cfg.Install)
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", "[remote\ncatalog_url = 1"},
		{"unknown key", "[install]\nworkspaces = \"x\""},
		{"invalid value", "[remote]\ntimeout_secs = -5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromPath(writeConfig(t, tt.content)); err == nil {
				t.Error("LoadFromPath should fail")
			}
		})
	}

	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadFromPath should fail for a missing file")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("IA_CONFIG", filepath.Join(t.TempDir(), "none.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Remote.CatalogURL != Default().Remote.CatalogURL {
		t.Errorf("expected defaults, got %q", cfg.Remote.CatalogURL)
	}
}

func TestLoad_UsesConfigEnv(t *testing.T) {
	t.Setenv("IA_CONFIG", writeConfig(t, "[install]\ndev_mode = true\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Install.DevMode {
		t.Error("dev_mode from IA_CONFIG file not applied")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IA_LANGUAGE", "ru")
	t.Setenv("IA_CATALOG_URL", "http://localhost:8080/info.json")
	t.Setenv("IA_MESSAGES_URL", "http://localhost:8080/{lang}.json")
	t.Setenv("IA_WORKSPACE", "scratch")
	t.Setenv("IA_DEV", "true")
	t.Setenv("IA_STRICT_EXIT", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Install.Language != "ru" {
		t.Errorf("IA_LANGUAGE not applied: %q", cfg.Install.Language)
	}
	if cfg.Remote.CatalogURL != "http://localhost:8080/info.json" {
		t.Errorf("IA_CATALOG_URL not applied: %q", cfg.Remote.CatalogURL)
	}
	if cfg.Remote.MessagesURL != "http://localhost:8080/{lang}.json" {
		t.Errorf("IA_MESSAGES_URL not applied: %q", cfg.Remote.MessagesURL)
	}
	if cfg.Install.Workspace != "scratch" {
		t.Errorf("IA_WORKSPACE not applied: %q", cfg.Install.Workspace)
	}
	if !cfg.Install.DevMode || !cfg.Install.StrictExitCodes {
		t.Errorf("boolean overrides not applied: %+v", cfg.Install)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config should be valid: %v", err)
	}
}

func TestApplyEnvOverrides_IgnoresGarbageBooleans(t *testing.T) {
	t.Setenv("IA_DEV", "sometimes")

	cfg := Default()
	cfg.Install.DevMode = true
	cfg.ApplyEnvOverrides()

	if !cfg.Install.DevMode {
		t.Error("unparseable IA_DEV should leave the value unchanged")
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Install.Language = "ru"
	cfg.Install.Interpreters = map[string][]string{".py": {"py", "-3"}}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Installation Assistant configuration file") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Install.Language != "ru" {
		t.Errorf("language lost: %q", loaded.Install.Language)
	}
	if got := loaded.Install.Interpreters[".py"]; len(got) != 2 || got[1] != "-3" {
		t.Errorf("interpreters lost: %v", loaded.Install.Interpreters)
	}
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := InitFile(path); err != nil {
		t.Fatalf("InitFile failed: %v", err)
	}
	if err := InitFile(path); err == nil {
		t.Error("InitFile should refuse to overwrite an existing file")
	}
}

func TestLogPath(t *testing.T) {
	cfg := Default()
	cfg.Log.File = "/tmp/custom.log"
	if p, err := cfg.LogPath(); err != nil || p != "/tmp/custom.log" {
		t.Errorf("LogPath() = %q, %v", p, err)
	}
}
