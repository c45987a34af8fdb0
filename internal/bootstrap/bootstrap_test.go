// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomfodm/ia/internal/download"
)

type printer struct{ lines []string }

func (p *printer) Print(markup string) { p.lines = append(p.lines, markup) }

type checkRunner struct {
	argv   []string
	exists bool
	mode   os.FileMode
	status int
}

func (r *checkRunner) Run(ctx context.Context, argv []string, dir string) (int, error) {
	r.argv = argv
	if info, err := os.Stat(argv[0]); err == nil {
		r.exists = true
		r.mode = info.Mode().Perm()
	}
	return r.status, nil
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/ia-linux-amd64",
		ResolveURL("https://example.com/ia-{os}-{arch}{ext}", "linux", "amd64"))
	assert.Equal(t,
		"https://example.com/ia-windows-arm64.exe",
		ResolveURL("https://example.com/ia-{os}-{arch}{ext}", "windows", "arm64"))
	assert.Equal(t, "ia-main.exe", ProgramName("windows"))
	assert.Equal(t, "ia-main", ProgramName("linux"))
}

func TestLaunch_RunsAndRemovesProgram(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ia-main")
	runner := &checkRunner{status: 3}
	l := &Launcher{Fetcher: download.New(), Runner: runner, Out: &printer{}}

	require.NoError(t, l.Launch(context.Background(), srv.URL, dest, []string{"--dev"}))

	assert.Equal(t, []string{dest, "--dev"}, runner.argv)
	assert.True(t, runner.exists, "program must exist while it runs")
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0755), runner.mode)
	}
	assert.NoFileExists(t, dest)
}

func TestLaunch_DownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "ia-main")
	runner := &checkRunner{}
	l := &Launcher{Fetcher: download.New(), Runner: runner, Out: &printer{}}

	err := l.Launch(context.Background(), srv.URL, dest, nil)
	require.Error(t, err)
	assert.Nil(t, runner.argv, "nothing runs after a failed download")
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+".part")
}
