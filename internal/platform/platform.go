// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package platform identifies the operating systems the assistant can install on.
package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Platform is the catalog key for an operating system.
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
)

// ErrUnsupported is returned when the host OS has no catalog key.
var ErrUnsupported = errors.New("unsupported platform")

// Supported lists every platform in catalog order.
func Supported() []Platform {
	return []Platform{Windows, Linux}
}

// Detect returns the platform of the running process.
func Detect() (Platform, error) {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a GOOS value onto a Platform.
func FromGOOS(goos string) (Platform, error) {
	switch goos {
	case "windows":
		return Windows, nil
	case "linux":
		return Linux, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, goos)
}

// Parse validates a platform name given on a command line.
func Parse(name string) (Platform, error) {
	for _, p := range Supported() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
}

func (p Platform) String() string {
	return string(p)
}
