// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editorsetup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrUnsafeEntry is returned for an archive entry that would land outside
// the destination directory.
var ErrUnsafeEntry = errors.New("archive entry escapes destination")

// Extract7z unpacks the 7z archive at path into dir and returns the number of
// regular files written. Entries are checked before anything is written.
func Extract7z(path, dir string) (int, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	targets := make([]string, len(r.File))
	for i, f := range r.File {
		name := filepath.FromSlash(strings.ReplaceAll(f.Name, `\`, "/"))
		if !filepath.IsLocal(name) {
			return 0, fmt.Errorf("%w: %q", ErrUnsafeEntry, f.Name)
		}
		targets[i] = filepath.Join(dir, name)
	}

	files := 0
	for i, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0755); err != nil {
				return files, fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}
		if err := extractFile(f, targets[i]); err != nil {
			return files, err
		}
		files++
	}
	return files, nil
}

func extractFile(f *sevenzip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}
