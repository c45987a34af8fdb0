// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editorsetup

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// CommandRunner runs a process and reports its exit status.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, dir string) (int, error)
}

// Fetcher downloads a URL to a file.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// Printer shows markup-styled progress messages.
type Printer interface {
	Print(markup string)
}

// Configurator applies a Profile.
type Configurator struct {
	Runner  CommandRunner
	Fetcher Fetcher
	Out     Printer

	// Logger receives one line per step. Nil discards them.
	Logger *log.Logger
}

// StepError names the step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Apply installs the toolchain and extensions, then merges the settings.
func (c *Configurator) Apply(ctx context.Context, p *Profile) error {
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}

	c.Out.Print("\nInstalling necessary stuff...")
	if err := c.installToolchain(ctx, p); err != nil {
		return err
	}

	for _, ext := range p.Extensions {
		if err := c.run(ctx, "install extension "+ext, []string{p.CodeCommand, "--install-extension", ext}); err != nil {
			return err
		}
	}

	c.Out.Print("\nSetting settings.json...")
	for _, s := range p.Settings {
		c.Out.Print(s.Key + ": " + FormatValue(s.Value))
	}
	if err := MergeSettings(p.SettingsPath, p.Settings); err != nil {
		return &StepError{Step: "settings", Err: err}
	}
	c.Logger.Printf("SETTINGS_MERGED | path=%s keys=%d", p.SettingsPath, len(p.Settings))

	c.Out.Print("\n[green]Configuring completed.")
	return nil
}

func (c *Configurator) installToolchain(ctx context.Context, p *Profile) error {
	for _, argv := range p.ToolchainCommands {
		if err := c.run(ctx, "toolchain", argv); err != nil {
			return err
		}
	}

	if p.ToolchainURL == "" {
		return nil
	}
	c.Logger.Printf("TOOLCHAIN_DOWNLOAD | url=%s dest=%s", p.ToolchainURL, p.ToolchainArchive)
	if err := c.Fetcher.Download(ctx, p.ToolchainURL, p.ToolchainArchive); err != nil {
		return &StepError{Step: "toolchain download", Err: err}
	}

	c.Out.Print("Extracting...")
	files, err := Extract7z(p.ToolchainArchive, p.ToolchainDir)
	if err != nil {
		return &StepError{Step: "toolchain extract", Err: err}
	}
	c.Logger.Printf("TOOLCHAIN_EXTRACTED | dir=%s files=%d", p.ToolchainDir, files)
	if err := os.Remove(p.ToolchainArchive); err != nil {
		c.Logger.Printf("TOOLCHAIN_CLEANUP_FAILED | path=%s err=%v", p.ToolchainArchive, err)
	}
	return nil
}

func (c *Configurator) run(ctx context.Context, step string, argv []string) error {
	status, err := c.Runner.Run(ctx, argv, "")
	c.Logger.Printf("STEP | step=%q command=%q status=%d err=%v", step, strings.Join(argv, " "), status, err)
	if err != nil {
		return &StepError{Step: step, Err: err}
	}
	if status != 0 {
		return &StepError{Step: step, Err: fmt.Errorf("%s exited with status %d", argv[0], status)}
	}
	return nil
}
