// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nomfodm/ia/internal/platform"
)

// NoSetupFile in SetupSpec.SetupFilename means the setup command needs no download.
const NoSetupFile = "noSetupFile"

// =============================================================================
// CATALOG DOCUMENT
// =============================================================================

// Catalog is the remote list of installable applications.
type Catalog struct {
	Apps []App `json:"apps"`
}

// App is one installable unit.
type App struct {
	FullAppName    string               `json:"fullAppName"`
	ShortAppName   string               `json:"shortAppName"`
	Setup          map[string]SetupSpec `json:"setup"`
	Configurations []ConfigSpec         `json:"configurations"`
}

// SetupSpec describes how to obtain and run an installer on one platform.
type SetupSpec struct {
	SetupFilename string   `json:"setupFilename"`
	SetupURL      string   `json:"setupUrl"`
	SetupCommand  []string `json:"setupCommand"`
}

// ConfigSpec is an optional post-install configuration script.
// The script is always invoked with the platform name as its only argument.
type ConfigSpec struct {
	FullConfigName          string `json:"fullConfigName"`
	ShortConfigName         string `json:"shortConfigName"`
	ConfigureScriptFilename string `json:"configureScriptFilename"`
	ConfigureScriptURL      string `json:"configureScriptUrl"`
}

// NeedsDownload reports whether the setup file must be fetched before running.
func (s SetupSpec) NeedsDownload() bool {
	return s.SetupFilename != NoSetupFile
}

// SetupFor returns the setup spec for p.
func (a App) SetupFor(p platform.Platform) (SetupSpec, bool) {
	spec, ok := a.Setup[string(p)]
	return spec, ok
}

// Configuration returns the configuration for a 1-based menu choice.
// Choice 0 means "no configuration".
func (a App) Configuration(choice int) (ConfigSpec, bool) {
	if choice < 1 || choice > len(a.Configurations) {
		return ConfigSpec{}, false
	}
	return a.Configurations[choice-1], true
}

// App returns the app for a 1-based menu choice.
func (c *Catalog) App(choice int) (App, bool) {
	if c == nil || choice < 1 || choice > len(c.Apps) {
		return App{}, false
	}
	return c.Apps[choice-1], true
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one schema violation.
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks that every app can be installed on p.
func (c *Catalog) Validate(p platform.Platform) error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c == nil || len(c.Apps) == 0 {
		add("apps", "catalog has no apps")
		return errs
	}

	for i, app := range c.Apps {
		field := fmt.Sprintf("apps[%d]", i)
		if app.FullAppName == "" {
			add(field+".fullAppName", "must not be empty")
		}
		if app.ShortAppName == "" {
			add(field+".shortAppName", "must not be empty")
		}

		setup, ok := app.SetupFor(p)
		if !ok {
			add(field+".setup", "no entry for platform %q", p)
		} else {
			sf := field + ".setup." + string(p)
			if setup.NeedsDownload() {
				if err := checkFilename(setup.SetupFilename); err != nil {
					add(sf+".setupFilename", "%v", err)
				}
				if setup.SetupURL == "" {
					add(sf+".setupUrl", "required unless setupFilename is %q", NoSetupFile)
				}
			}
			if len(setup.SetupCommand) == 0 || setup.SetupCommand[0] == "" {
				add(sf+".setupCommand", "must name a program")
			}
		}

		for j, cfg := range app.Configurations {
			cf := fmt.Sprintf("%s.configurations[%d]", field, j)
			if cfg.FullConfigName == "" {
				add(cf+".fullConfigName", "must not be empty")
			}
			if err := checkFilename(cfg.ConfigureScriptFilename); err != nil {
				add(cf+".configureScriptFilename", "%v", err)
			}
			if cfg.ConfigureScriptURL == "" {
				add(cf+".configureScriptUrl", "must not be empty")
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkFilename accepts plain file names only, so artifacts stay inside the workspace.
func checkFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid file name %q", name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("file name %q must not contain a path", name)
	}
	return nil
}
