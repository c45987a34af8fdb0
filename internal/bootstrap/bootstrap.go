// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap fetches the current Installation Assistant build, runs it
// and deletes it again.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultURLTemplate locates the release build for the running platform.
const DefaultURLTemplate = "https://github.com/nomfodm/ia/releases/latest/download/ia-{os}-{arch}{ext}"

// IssuesURL is where users report unexpected failures.
const IssuesURL = "https://github.com/nomfodm/ia/issues"

// ResolveURL fills the {os}, {arch} and {ext} placeholders. {ext} is ".exe"
// on windows and empty elsewhere.
func ResolveURL(template, goos, goarch string) string {
	return strings.NewReplacer(
		"{os}", goos,
		"{arch}", goarch,
		"{ext}", exeSuffix(goos),
	).Replace(template)
}

// ProgramName is the local file name of the downloaded program.
func ProgramName(goos string) string {
	return "ia-main" + exeSuffix(goos)
}

func exeSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// Fetcher downloads a URL to a file.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// CommandRunner runs a process to completion.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, dir string) (int, error)
}

// Printer shows progress messages.
type Printer interface {
	Print(markup string)
}

// Launcher downloads and runs the program.
type Launcher struct {
	Fetcher Fetcher
	Runner  CommandRunner
	Out     Printer

	// Logger receives one line per step. Nil discards them.
	Logger *log.Logger
}

// Launch downloads url to dest, runs it with args and removes it. The file is
// removed on every path, including cancellation. The program's own exit
// status is logged, not returned: it reports its failures itself.
func (l *Launcher) Launch(ctx context.Context, url, dest string, args []string) error {
	logger := l.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dest, err)
	}
	defer func() {
		if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Printf("CLEANUP_FAILED | path=%s err=%v", dest, err)
		}
	}()

	l.Out.Print("\n\nDownloading Installation Assistant...")
	logger.Printf("DOWNLOAD | url=%s dest=%s", url, dest)
	if err := l.Fetcher.Download(ctx, url, dest); err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dest, 0755); err != nil {
			return fmt.Errorf("failed to make %s executable: %w", dest, err)
		}
	}

	l.Out.Print("\n\nStarting...\n")
	// The program handles Ctrl-C itself and must get the chance to clean up
	// its workspace, so it is not killed when ctx is cancelled.
	status, err := l.Runner.Run(context.WithoutCancel(ctx), append([]string{dest}, args...), "")
	logger.Printf("EXIT | status=%d err=%v", status, err)
	if err != nil {
		return err
	}
	return nil
}
