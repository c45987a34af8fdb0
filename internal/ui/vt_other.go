// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package ui

// EnableVirtualTerminal is a no-op outside Windows.
func EnableVirtualTerminal() {}
