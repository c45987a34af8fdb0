// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package download streams remote artifacts to disk with progress reporting.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// DefaultReportInterval is the minimum time between intermediate progress reports.
const DefaultReportInterval = 100 * time.Millisecond

// Progress is a snapshot of one transfer.
type Progress struct {
	Filename   string
	Downloaded int64
	Total      int64 // -1 until known
	Rate       float64
	ETA        time.Duration // 0 when unknown
	Done       bool
}

// Fraction returns completion in [0,1], or -1 when the total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	f := float64(p.Downloaded) / float64(p.Total)
	if f > 1 {
		f = 1
	}
	return f
}

// ProgressFunc receives progress snapshots on the downloading goroutine.
type ProgressFunc func(Progress)

// HTTPError is returned for a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %s", e.URL, e.Status)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Downloader) { d.httpClient = c }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Downloader) { d.onProgress = fn }
}

// WithReportInterval changes how often intermediate progress is reported.
func WithReportInterval(interval time.Duration) Option {
	return func(d *Downloader) { d.interval = interval }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *Downloader) { d.userAgent = ua }
}

// Downloader fetches URLs to local files.
//
// Transfers have no overall timeout: installers can be large and the tool is
// interactive. Cancel the context to abort.
type Downloader struct {
	httpClient *http.Client
	onProgress ProgressFunc
	interval   time.Duration
	userAgent  string
	now        func() time.Time
}

// New creates a Downloader.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{},
		interval:   DefaultReportInterval,
		userAgent:  "ia",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download streams url into dest. The body is written to dest+".part" and
// renamed onto dest only after the transfer completes, so dest never holds a
// partial file.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	partPath := dest + ".part"
	f, err := os.OpenFile(partPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(partPath)
		}
	}()

	tracker := &tracker{
		progress: Progress{Filename: filepath.Base(dest), Total: resp.ContentLength},
		start:    d.now(),
		now:      d.now,
		report:   d.onProgress,
		limiter:  &rate.Sometimes{First: 1, Interval: d.interval},
	}
	if tracker.progress.Total < 0 {
		tracker.progress.Total = -1
	}
	tracker.emit(false)

	if _, err := io.Copy(f, io.TeeReader(resp.Body, tracker)); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(partPath, dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	success = true

	if tracker.progress.Total < 0 {
		tracker.progress.Total = tracker.progress.Downloaded
	}
	tracker.emit(true)
	return nil
}

// tracker counts bytes passing through the TeeReader.
type tracker struct {
	progress Progress
	start    time.Time
	now      func() time.Time
	report   ProgressFunc
	limiter  *rate.Sometimes
}

func (t *tracker) Write(p []byte) (int, error) {
	t.progress.Downloaded += int64(len(p))
	t.limiter.Do(func() { t.emit(false) })
	return len(p), nil
}

func (t *tracker) emit(done bool) {
	if t.report == nil {
		return
	}
	elapsed := t.now().Sub(t.start).Seconds()
	p := t.progress
	p.Done = done
	if elapsed > 0 {
		p.Rate = float64(p.Downloaded) / elapsed
	}
	if p.Rate > 0 && p.Total > 0 && p.Total > p.Downloaded {
		p.ETA = time.Duration(float64(p.Total-p.Downloaded) / p.Rate * float64(time.Second))
	}
	t.report(p)
}
