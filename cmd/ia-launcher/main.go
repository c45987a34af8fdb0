// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command ia-launcher downloads the latest Installation Assistant for this
// platform, runs it and deletes it afterwards.
//
// Usage:
//
//	ia-launcher [--url TEMPLATE] [-- IA-ARGS...]
//
// Arguments after "--" are passed to ia. The launcher always exits 0;
// unexpected failures are printed with a link to the issue tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nomfodm/ia/internal/applog"
	"github.com/nomfodm/ia/internal/bootstrap"
	"github.com/nomfodm/ia/internal/config"
	"github.com/nomfodm/ia/internal/download"
	"github.com/nomfodm/ia/internal/installer"
	"github.com/nomfodm/ia/internal/ui"
)

func main() {
	run(os.Args[1:], os.Stdout)
	os.Exit(0)
}

func run(args []string, stdout io.Writer) {
	fs := pflag.NewFlagSet("ia-launcher", pflag.ContinueOnError)
	fs.SetOutput(stdout)
	urlTemplate := fs.String("url", bootstrap.DefaultURLTemplate, "download URL; {os}, {arch} and {ext} are filled in")
	if err := fs.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stdout, "ia-launcher: %v\n", err)
		}
		return
	}

	ui.EnableVirtualTerminal()
	console := ui.NewConsole(stdout)

	logger := applog.Discard()
	if path, err := config.Default().LogPath(); err == nil {
		l, closeLog, _ := applog.Open(path, "ia-launcher")
		defer closeLog()
		logger = l
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := ui.NewProgressBar(console, 40)
	launcher := &bootstrap.Launcher{
		Fetcher: download.New(download.WithProgress(bar.Update), download.WithUserAgent("ia-launcher")),
		Runner:  installer.NewExecRunner(),
		Out:     console,
		Logger:  logger,
	}

	url := bootstrap.ResolveURL(*urlTemplate, runtime.GOOS, runtime.GOARCH)
	err := launcher.Launch(ctx, url, bootstrap.ProgramName(runtime.GOOS), fs.Args())
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(stdout, "\n\nUnexpected error:", err)
		fmt.Fprintln(stdout, "Report this exception to "+bootstrap.IssuesURL)
	}
}
