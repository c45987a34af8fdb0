// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_WritesFileAndReportsProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 256*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer srv.Close()

	var reports []Progress
	d := New(WithProgress(func(p Progress) { reports = append(reports, p) }))

	dest := filepath.Join(t.TempDir(), "ia", "setup.exe")
	require.NoError(t, d.Download(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	_, err = os.Stat(dest + ".part")
	assert.True(t, os.IsNotExist(err), "part file should be renamed away")

	require.NotEmpty(t, reports)
	first, last := reports[0], reports[len(reports)-1]
	assert.Equal(t, "setup.exe", first.Filename)
	assert.Equal(t, int64(len(payload)), first.Total)
	assert.False(t, first.Done)
	assert.True(t, last.Done)
	assert.Equal(t, int64(len(payload)), last.Downloaded)
	assert.Equal(t, 1.0, last.Fraction())
}

func TestDownload_UnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// flushing before the body forces a chunked response without Content-Length
		w.(http.Flusher).Flush()
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	var first, last Progress
	n := 0
	d := New(WithProgress(func(p Progress) {
		if n == 0 {
			first = p
		}
		last = p
		n++
	}))

	dest := filepath.Join(t.TempDir(), "file.sh")
	require.NoError(t, d.Download(context.Background(), srv.URL, dest))

	assert.Equal(t, int64(-1), first.Total)
	assert.Equal(t, -1.0, first.Fraction())
	assert.True(t, last.Done)
	assert.Equal(t, int64(5), last.Total)
}

func TestDownload_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing.bin")
	err := New().Download(context.Background(), srv.URL, dest)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownload_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "cancelled.bin")
	err := New().Download(ctx, srv.URL, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProgress_Fraction(t *testing.T) {
	assert.Equal(t, 0.5, Progress{Downloaded: 5, Total: 10}.Fraction())
	assert.Equal(t, 1.0, Progress{Downloaded: 15, Total: 10}.Fraction())
	assert.Equal(t, -1.0, Progress{Downloaded: 5, Total: -1}.Fraction())
}
