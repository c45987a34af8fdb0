// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small file helpers shared by the assistant's commands.
//
// Files the user owns (editor settings, the config file) are replaced with
// AtomicWriteFile so an interrupted write leaves either the old or the new
// content, never a truncated file:
//
//	err := util.AtomicWriteFile(path, data, 0644)
package util
