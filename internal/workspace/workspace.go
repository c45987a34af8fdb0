// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace manages the scratch directory that holds downloaded
// artifacts for a single run.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the workspace name relative to the working directory.
// Catalog setup commands refer to artifacts through this path.
const DefaultDir = "ia"

// Workspace is a scratch directory. The zero value is not usable; call New.
type Workspace struct {
	dir string
}

// New returns a workspace rooted at dir (DefaultDir when empty).
// Nothing is created until Ensure is called.
func New(dir string) *Workspace {
	if dir == "" {
		dir = DefaultDir
	}
	return &Workspace{dir: filepath.Clean(dir)}
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// ErrUnsafeDir is returned for a directory whose removal would delete more
// than scratch files.
var ErrUnsafeDir = errors.New("unsafe workspace directory")

// CheckDir reports whether dir can be used as a workspace. Relative paths
// must stay below the working directory. Absolute paths must not be the
// working directory, the home directory, a filesystem root or an ancestor of
// any of them.
func CheckDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafeDir)
	}
	clean := filepath.Clean(dir)
	if !filepath.IsAbs(clean) {
		if clean == "." || !filepath.IsLocal(clean) {
			return fmt.Errorf("%w: %q leaves the working directory", ErrUnsafeDir, dir)
		}
		return nil
	}

	if clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return fmt.Errorf("%w: %q is a filesystem root", ErrUnsafeDir, dir)
	}
	var protected []string
	if wd, err := os.Getwd(); err == nil {
		protected = append(protected, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		protected = append(protected, home)
	}
	for _, p := range protected {
		if isAncestorOrSelf(clean, p) {
			return fmt.Errorf("%w: %q contains %s", ErrUnsafeDir, dir, p)
		}
	}
	return nil
}

func isAncestorOrSelf(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel)
}

// Ensure creates the directory if absent. Calling it repeatedly is harmless.
func (w *Workspace) Ensure() error {
	if err := CheckDir(w.dir); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", w.dir, err)
	}
	return nil
}

// Teardown removes the directory and everything in it. A missing directory
// is not an error. Directories rejected by CheckDir are left alone.
func (w *Workspace) Teardown() error {
	if err := CheckDir(w.dir); err != nil {
		return err
	}
	if err := os.RemoveAll(w.dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove workspace %s: %w", w.dir, err)
	}
	return nil
}

// Path returns the location of a file named name inside the workspace.
// Names containing path elements are rejected.
func (w *Workspace) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid workspace file name %q", name)
	}
	return filepath.Join(w.dir, name), nil
}
