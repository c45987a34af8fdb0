// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editorsetup prepares Visual Studio Code for C and C++ work: it
// installs a compiler toolchain, the editor extensions, and merges a fixed
// set of keys into the user's settings.json.
package editorsetup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nomfodm/ia/internal/platform"
)

// MinGWURL is the Windows toolchain archive.
const MinGWURL = "https://github.com/niXman/mingw-builds-binaries/releases/download/13.2.0-rt_v11-rev1/" +
	"x86_64-13.2.0-release-win32-seh-msvcrt-rt_v11-rev1.7z"

// MinGWArchive is the archive name inside the workspace.
const MinGWArchive = "mingw64.7z"

// Extensions installed on every platform.
var Extensions = []string{
	"ms-vscode.cpptools-extension-pack",
	"formulahendry.code-runner",
	"EliverLara.andromeda",
}

// Setting is one settings.json key. Order is preserved for display.
type Setting struct {
	Key   string
	Value any
}

// Env holds the environment the profile depends on.
type Env struct {
	Home         string
	AppData      string
	LocalAppData string
}

// EnvFromOS reads HOME (or the user profile), APPDATA and LOCALAPPDATA.
func EnvFromOS() Env {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return Env{
		Home:         home,
		AppData:      os.Getenv("APPDATA"),
		LocalAppData: os.Getenv("LOCALAPPDATA"),
	}
}

// Profile is everything needed to configure the editor on one platform.
type Profile struct {
	Platform platform.Platform

	Extensions []string
	Settings   []Setting

	// SettingsPath is the user settings.json.
	SettingsPath string

	// CodeCommand is the editor's command-line launcher.
	CodeCommand string

	// ToolchainCommands install the compiler (linux).
	ToolchainCommands [][]string

	// ToolchainURL is downloaded to ToolchainArchive and extracted into
	// ToolchainDir (windows).
	ToolchainURL     string
	ToolchainArchive string
	ToolchainDir     string
}

// ErrMissingEnv is returned when a required environment variable is unset.
var ErrMissingEnv = errors.New("required environment variable is not set")

// NewProfile builds the profile for p. Downloaded archives go to workspaceDir.
func NewProfile(p platform.Platform, env Env, workspaceDir string) (*Profile, error) {
	common := []Setting{
		{"code-runner.runInTerminal", true},
		{"code-runner.saveAllFilesBeforeRun", true},
		{"code-runner.saveFileBeforeRun", true},
		{"workbench.colorTheme", "Andromeda Bordered"},
	}

	switch p {
	case platform.Linux:
		if env.Home == "" {
			return nil, fmt.Errorf("HOME: %w", ErrMissingEnv)
		}
		return &Profile{
			Platform:     p,
			Extensions:   Extensions,
			Settings:     append(common, Setting{"C_Cpp.default.compilerPath", "/usr/bin/g++"}),
			SettingsPath: filepath.Join(env.Home, ".config", "Code", "User", "settings.json"),
			CodeCommand:  "/usr/share/code/bin/code",
			ToolchainCommands: [][]string{
				{"sudo", "apt", "update"},
				{"sudo", "apt", "install", "gcc"},
			},
		}, nil

	case platform.Windows:
		switch {
		case env.Home == "":
			return nil, fmt.Errorf("USERPROFILE: %w", ErrMissingEnv)
		case env.AppData == "":
			return nil, fmt.Errorf("APPDATA: %w", ErrMissingEnv)
		case env.LocalAppData == "":
			return nil, fmt.Errorf("LOCALAPPDATA: %w", ErrMissingEnv)
		}
		// Paths are built with backslashes so the profile is identical no
		// matter which OS builds it.
		bin := env.Home + `\mingw64\bin\`
		executors := map[string]any{
			"c":   "cd $dir && " + bin + "gcc $fileName -o $fileNameWithoutExt && $dir$fileNameWithoutExt",
			"cpp": "cd $dir && " + bin + "g++ $fileName -o $fileNameWithoutExt && $dir$fileNameWithoutExt",
		}
		return &Profile{
			Platform:   p,
			Extensions: Extensions,
			Settings: append(common,
				Setting{"code-runner.executorMap", executors},
				Setting{"C_Cpp.default.compilerPath", bin + "g++"},
			),
			SettingsPath:     env.AppData + `\Code\User\settings.json`,
			CodeCommand:      env.LocalAppData + `\Programs\Microsoft VS Code\bin\code`,
			ToolchainURL:     MinGWURL,
			ToolchainArchive: filepath.Join(workspaceDir, MinGWArchive),
			ToolchainDir:     env.Home + `\`,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", platform.ErrUnsupported, p)
}
