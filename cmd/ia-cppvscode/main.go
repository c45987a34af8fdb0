// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command ia-cppvscode prepares Visual Studio Code for C++ development. It is
// run by ia as a configuration script:
//
//	ia-cppvscode <windows|linux>
//
// It installs a compiler toolchain, the C++ editor extensions and merges the
// recommended settings into the user's settings.json. Downloads go to the
// directory named by IA_WORKSPACE (default "ia").
//
// A missing or unknown argument prints a notice and exits 0. A failed step
// exits 1 so ia reports the configuration as failed.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nomfodm/ia/internal/applog"
	"github.com/nomfodm/ia/internal/config"
	"github.com/nomfodm/ia/internal/download"
	"github.com/nomfodm/ia/internal/editorsetup"
	"github.com/nomfodm/ia/internal/installer"
	"github.com/nomfodm/ia/internal/platform"
	"github.com/nomfodm/ia/internal/ui"
	"github.com/nomfodm/ia/internal/workspace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, "This script is destined for Installation Helper")
		return 0
	}
	p, err := platform.Parse(args[0])
	if err != nil {
		fmt.Fprintln(stdout, "Wrong system type specified")
		return 0
	}

	ui.EnableVirtualTerminal()
	console := ui.NewConsole(stdout)

	wsDir := os.Getenv("IA_WORKSPACE")
	if wsDir == "" {
		wsDir = workspace.DefaultDir
	}
	if err := workspace.CheckDir(wsDir); err != nil {
		console.Print(fmt.Sprintf("[red]%v", err))
		return 1
	}
	profile, err := editorsetup.NewProfile(p, editorsetup.EnvFromOS(), wsDir)
	if err != nil {
		console.Print(fmt.Sprintf("[red]%v", err))
		return 1
	}

	logger := applog.Discard()
	if path, err := config.Default().LogPath(); err == nil {
		l, closeLog, _ := applog.Open(path, "ia-cppvscode")
		defer closeLog()
		logger = l
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := ui.NewProgressBar(console, 40)
	configurator := &editorsetup.Configurator{
		Runner:  installer.NewExecRunner(),
		Fetcher: download.New(download.WithProgress(bar.Update), download.WithUserAgent("ia-cppvscode")),
		Out:     console,
		Logger:  logger,
	}
	if err := configurator.Apply(ctx, profile); err != nil {
		if ctx.Err() != nil {
			return 130
		}
		console.Print(fmt.Sprintf("[red]%v", err))
		return 1
	}
	return 0
}
