// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nomfodm/ia/internal/download"
)

// =============================================================================
// DOWNLOAD PROGRESS
// =============================================================================

// ProgressBar draws a single self-overwriting line per download:
//
//	setup.exe ████████░░░░ 45.3% • 12 MB/27 MB • 3.1 MB/s • 0:00:05
type ProgressBar struct {
	console *Console
	bar     progress.Model
	lastLen int // visible width of the last line
}

// NewProgressBar creates a progress bar of the given bar width.
func NewProgressBar(c *Console, width int) *ProgressBar {
	if width < 10 {
		width = 10
	}
	return &ProgressBar{
		console: c,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
			progress.WithColorProfile(c.renderer.ColorProfile()),
		),
	}
}

// Update redraws the line for p. Pass it to download.WithProgress.
func (b *ProgressBar) Update(p download.Progress) {
	line := b.Line(p)
	pad := ""
	n := lipgloss.Width(line)
	if n < b.lastLen {
		pad = strings.Repeat(" ", b.lastLen-n)
	}
	b.lastLen = n
	fmt.Fprint(b.console.out, "\r"+line+pad)
	if p.Done {
		fmt.Fprintln(b.console.out)
		b.lastLen = 0
	}
}

// Line formats p without writing it.
func (b *ProgressBar) Line(p download.Progress) string {
	name := b.console.renderer.NewStyle().Bold(true).Foreground(brandInfo).Render(p.Filename)
	sep := b.console.renderer.NewStyle().Foreground(textMuted).Render(" • ")

	parts := []string{}
	if f := p.Fraction(); f >= 0 {
		parts = append(parts,
			b.bar.ViewAs(f)+fmt.Sprintf(" %5.1f%%", f*100),
			humanize.Bytes(uint64(p.Downloaded))+"/"+humanize.Bytes(uint64(p.Total)),
		)
	} else {
		parts = append(parts, humanize.Bytes(uint64(p.Downloaded)))
	}
	parts = append(parts, humanize.Bytes(uint64(p.Rate))+"/s")
	if !p.Done {
		parts = append(parts, FormatETA(p.ETA))
	}

	return name + " " + strings.Join(parts, sep)
}

// FormatETA renders a duration as h:mm:ss, or "-:--:--" when unknown.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "-:--:--"
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
