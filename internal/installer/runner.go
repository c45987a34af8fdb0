// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nomfodm/ia/internal/platform"
)

// CommandRunner runs a process to completion.
type CommandRunner interface {
	// Run starts argv in dir (the working directory when empty) and waits.
	// A non-zero exit is reported through the status, not the error; err is
	// set only when the process could not run or was killed by ctx.
	Run(ctx context.Context, argv []string, dir string) (int, error)
}

// ExecRunner runs commands with inherited stdio so installers can talk to the
// user directly.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WaitDelay is the grace period between the interrupt sent on
	// cancellation and the kill. On windows the process is killed at once.
	WaitDelay time.Duration
}

// NewExecRunner returns a runner bound to the process's own stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		WaitDelay: 5 * time.Second,
	}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, argv []string, dir string) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.WaitDelay = r.WaitDelay
	if runtime.GOOS != "windows" {
		cmd.Cancel = func() error {
			return cmd.Process.Signal(os.Interrupt)
		}
	}

	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", argv[0], err)
}

// =============================================================================
// CONFIGURATION SCRIPTS
// =============================================================================

// DefaultInterpreters maps script extensions to the command that runs them.
func DefaultInterpreters(p platform.Platform) map[string][]string {
	python := "python3"
	if p == platform.Windows {
		python = "python"
	}
	interps := map[string][]string{
		".py":  {python},
		".sh":  {"sh"},
		".ps1": {"powershell", "-ExecutionPolicy", "Bypass", "-File"},
	}
	if p == platform.Windows {
		interps[".bat"] = []string{"cmd", "/C"}
		interps[".cmd"] = []string{"cmd", "/C"}
	}
	return interps
}

// ScriptCommand builds "<interpreter...> <script> <platform>". Scripts with
// no interpreter for their extension are run directly.
func ScriptCommand(interps map[string][]string, script string, p platform.Platform) []string {
	ext := strings.ToLower(filepath.Ext(script))
	interp := interps[ext]
	argv := make([]string, 0, len(interp)+2)
	argv = append(argv, interp...)
	return append(argv, script, string(p))
}

// prepareScript marks a directly executed script as executable.
func prepareScript(argv []string, script string) error {
	if len(argv) == 0 || argv[0] != script {
		return nil
	}
	if err := os.Chmod(script, 0755); err != nil {
		return fmt.Errorf("failed to make %s executable: %w", script, err)
	}
	return nil
}
