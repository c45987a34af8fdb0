// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// STYLES
// =============================================================================

var (
	// Colors
	brandPrimary   = lipgloss.Color("#7C3AED") // Purple
	brandSecondary = lipgloss.Color("#06B6D4") // Cyan
	brandAccent    = lipgloss.Color("#10B981") // Emerald
	brandWarning   = lipgloss.Color("#F59E0B") // Amber
	brandError     = lipgloss.Color("#EF4444") // Red
	brandInfo      = lipgloss.Color("#3B82F6") // Blue
	textMuted      = lipgloss.Color("#6B7280") // Gray
	textBright     = lipgloss.Color("#F9FAFB") // White
)

// markupColors maps tag words onto the palette. lipgloss degrades the hex
// values to the nearest ANSI color on limited terminals.
var markupColors = map[string]lipgloss.Color{
	"red":     brandError,
	"green":   brandAccent,
	"blue":    brandInfo,
	"cyan":    brandSecondary,
	"magenta": brandPrimary,
	"purple":  brandPrimary,
	"yellow":  brandWarning,
	"white":   textBright,
	"grey":    textMuted,
	"gray":    textMuted,
}
