// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nomfodm/ia/internal/messages"
	"github.com/nomfodm/ia/internal/util"
	"github.com/nomfodm/ia/internal/workspace"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete assistant configuration.
type Config struct {
	Version string `toml:"version"`

	// Remote catalog endpoints
	Remote RemoteConfig `toml:"remote"`

	// Install flow behavior
	Install InstallConfig `toml:"install"`

	// Console output
	UI UIConfig `toml:"ui"`

	// Log file
	Log LogConfig `toml:"log"`
}

// RemoteConfig locates the catalog and the message tables.
type RemoteConfig struct {
	CatalogURL string `toml:"catalog_url"`

	// MessagesURL must contain "{lang}".
	MessagesURL string `toml:"messages_url"`

	// TimeoutSecs bounds each catalog or message request. Artifact downloads
	// are not limited.
	TimeoutSecs int `toml:"timeout_secs"`
}

// InstallConfig tunes the install flow.
type InstallConfig struct {
	// Language skips the language prompt when set.
	Language string `toml:"language"`

	// Languages offered by the language prompt.
	Languages []string `toml:"languages"`

	// Workspace is the scratch directory, relative to the working directory.
	Workspace string `toml:"workspace"`

	// DevMode skips the language prompt and setup command execution.
	DevMode bool `toml:"dev_mode"`

	// IgnoreSetupExitStatus accepts failing setup commands.
	IgnoreSetupExitStatus bool `toml:"ignore_setup_exit_status"`

	// StrictExitCodes exits 1 on failures and 130 on interrupts instead of 0.
	StrictExitCodes bool `toml:"strict_exit_codes"`

	// Interpreters override the command used per script extension,
	// e.g. ".py" = ["python3.12"].
	Interpreters map[string][]string `toml:"interpreters,omitempty"`
}

// UIConfig controls console rendering.
type UIConfig struct {
	NoColor     bool `toml:"no_color"`
	ClearScreen bool `toml:"clear_screen"`

	// TUI shows menus as an interactive list.
	TUI bool `toml:"tui"`

	// ProgressIntervalMs throttles download progress redraws.
	ProgressIntervalMs int `toml:"progress_interval_ms"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Enabled bool `toml:"enabled"`

	// File defaults to <user cache dir>/ia/ia.log.
	File string `toml:"file,omitempty"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the production defaults.
func Default() *Config {
	return &Config{
		Version: "1.0",

		Remote: RemoteConfig{
			CatalogURL:  "https://infinitymc.ru/ih/info.json",
			MessagesURL: "https://infinitymc.ru/ih/{lang}.json",
			TimeoutSecs: 60,
		},

		Install: InstallConfig{
			Languages: []string{"en", "ru"},
			Workspace: "ia",
		},

		UI: UIConfig{
			ClearScreen:        true,
			ProgressIntervalMs: 100,
		},

		Log: LogConfig{
			Enabled: true,
		},
	}
}

// Timeout returns the per-request timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// ProgressInterval returns the redraw interval for download progress.
func (u UIConfig) ProgressInterval() time.Duration {
	return time.Duration(u.ProgressIntervalMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the assistant configuration directory (~/.ia).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ia"), nil
}

// ConfigPath returns $IA_CONFIG or ~/.ia/config.toml.
func ConfigPath() (string, error) {
	if p := os.Getenv("IA_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("could not determine cache directory: %w", err)
	}
	return filepath.Join(dir, "ia", "ia.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file at ConfigPath if it exists, otherwise starts from
// defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads the TOML file at path over the defaults, applies
// environment overrides and validates the result.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the file at path into cfg. Keys absent from the file keep
// their current values; unknown keys are rejected.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// fillDefaults restores defaults for values a file set to empty.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Remote.CatalogURL == "" {
		cfg.Remote.CatalogURL = defaults.Remote.CatalogURL
	}
	if cfg.Remote.MessagesURL == "" {
		cfg.Remote.MessagesURL = defaults.Remote.MessagesURL
	}
	if cfg.Remote.TimeoutSecs == 0 {
		cfg.Remote.TimeoutSecs = defaults.Remote.TimeoutSecs
	}

	if len(cfg.Install.Languages) == 0 {
		cfg.Install.Languages = defaults.Install.Languages
	}
	if cfg.Install.Workspace == "" {
		cfg.Install.Workspace = defaults.Install.Workspace
	}

	if cfg.UI.ProgressIntervalMs == 0 {
		cfg.UI.ProgressIntervalMs = defaults.UI.ProgressIntervalMs
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path with a header comment. The file is replaced
// atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# Installation Assistant configuration file")
	fmt.Fprintln(&buf, "# Generated by ia --init-config - edit with care")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintln(&buf, "# Environment variables IA_LANGUAGE, IA_CATALOG_URL, IA_MESSAGES_URL,")
	fmt.Fprintln(&buf, "# IA_WORKSPACE, IA_DEV and IA_STRICT_EXIT override these values.")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitFile writes the default configuration to path unless a file already
// exists there.
func InitFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return SaveTOML(Default(), path)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Remote
	if err := validateHTTPURL(c.Remote.CatalogURL); err != nil {
		add("remote.catalog_url", "%v", err)
	}
	if err := validateHTTPURL(strings.ReplaceAll(c.Remote.MessagesURL, "{lang}", "en")); err != nil {
		add("remote.messages_url", "%v", err)
	} else if !strings.Contains(c.Remote.MessagesURL, "{lang}") {
		add("remote.messages_url", "must contain the {lang} placeholder")
	}
	if c.Remote.TimeoutSecs < 1 || c.Remote.TimeoutSecs > 3600 {
		add("remote.timeout_secs", "must be between 1 and 3600, got %d", c.Remote.TimeoutSecs)
	}

	// Install
	if c.Install.Language != "" {
		if _, err := messages.NormalizeLanguage(c.Install.Language); err != nil {
			add("install.language", "%v", err)
		}
	}
	if len(c.Install.Languages) == 0 {
		add("install.languages", "must not be empty")
	}
	for i, lang := range c.Install.Languages {
		if _, err := messages.NormalizeLanguage(lang); err != nil || strings.TrimSpace(lang) == "" {
			add(fmt.Sprintf("install.languages[%d]", i), "invalid language %q", lang)
		}
	}
	if err := workspace.CheckDir(c.Install.Workspace); err != nil {
		add("install.workspace", "%v", err)
	}
	for ext, argv := range c.Install.Interpreters {
		if !strings.HasPrefix(ext, ".") {
			add("install.interpreters", "extension %q must start with a dot", ext)
		}
		if len(argv) == 0 || argv[0] == "" {
			add("install.interpreters", "interpreter for %q must name a program", ext)
		}
	}

	// UI
	if c.UI.ProgressIntervalMs < 0 {
		add("ui.progress_interval_ms", "cannot be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies IA_* environment variables.
//
// Supported environment variables:
//   - IA_LANGUAGE: overrides install.language
//   - IA_CATALOG_URL: overrides remote.catalog_url
//   - IA_MESSAGES_URL: overrides remote.messages_url
//   - IA_WORKSPACE: overrides install.workspace
//   - IA_DEV: "1" or "true" enables dev mode
//   - IA_STRICT_EXIT: "1" or "true" enables strict exit codes
func (c *Config) ApplyEnvOverrides() {
	if lang := os.Getenv("IA_LANGUAGE"); lang != "" {
		c.Install.Language = lang
	}
	if u := os.Getenv("IA_CATALOG_URL"); u != "" {
		c.Remote.CatalogURL = u
	}
	if u := os.Getenv("IA_MESSAGES_URL"); u != "" {
		c.Remote.MessagesURL = u
	}
	if ws := os.Getenv("IA_WORKSPACE"); ws != "" {
		c.Install.Workspace = ws
	}
	if dev, ok := envBool("IA_DEV"); ok {
		c.Install.DevMode = dev
	}
	if strict, ok := envBool("IA_STRICT_EXIT"); ok {
		c.Install.StrictExitCodes = strict
	}
}

func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, false
	}
	return b, true
}
