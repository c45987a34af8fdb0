// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package applog opens the diagnostic log shared by the assistant's binaries.
//
// Lines follow the "EVENT | key=value" form and carry a per-run id, so runs
// of ia and the helpers it starts can be told apart in one file:
//
//	2025/01/02 15:04:05 ia run=5f0c... STATE | state=install
package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// Open appends to the log file at path, creating it and its directory. The
// returned close function is always non-nil. When the file cannot be opened
// the logger discards output and the error is returned for reporting.
func Open(path, program string) (*log.Logger, func() error, error) {
	noop := func() error { return nil }
	if path == "" {
		return Discard(), noop, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Discard(), noop, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return Discard(), noop, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, program, uuid.NewString()), f.Close, nil
}

// New returns a logger on w tagging each line with program and runID.
func New(w io.Writer, program, runID string) *log.Logger {
	return log.New(w, fmt.Sprintf("%s run=%s ", program, runID), log.LstdFlags|log.Lmsgprefix)
}
