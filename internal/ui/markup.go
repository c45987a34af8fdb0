// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// MARKUP
// =============================================================================

// Message templates carry rich-style tags: "[red]", "[bold blue]", "[/]".
// A tag applies to all following text. A color in a later tag replaces the
// current color; attributes accumulate until "[/]" (or any "[/name]") resets
// the style. Brackets that do not form a known tag are printed literally.

// markupStyle is the accumulated state between tags.
type markupStyle struct {
	color     string
	bold      bool
	italic    bool
	underline bool
	dim       bool
}

func (s markupStyle) plain() bool {
	return s == markupStyle{}
}

// applyTag merges the words of a tag into s. ok is false when the tag has a
// word outside the vocabulary.
func (s markupStyle) applyTag(tag string) (markupStyle, bool) {
	if strings.HasPrefix(tag, "/") {
		return markupStyle{}, true
	}
	words := strings.Fields(tag)
	if len(words) == 0 {
		return s, false
	}
	next := s
	for _, w := range words {
		switch w {
		case "bold":
			next.bold = true
		case "italic":
			next.italic = true
		case "underline":
			next.underline = true
		case "dim":
			next.dim = true
		default:
			if _, ok := markupColors[w]; !ok {
				return s, false
			}
			next.color = w
		}
	}
	return next, true
}

func (s markupStyle) lipgloss(r *lipgloss.Renderer) lipgloss.Style {
	st := r.NewStyle().
		Bold(s.bold).
		Italic(s.italic).
		Underline(s.underline).
		Faint(s.dim)
	if c, ok := markupColors[s.color]; ok {
		st = st.Foreground(c)
	}
	return st
}

// markupSegment is a run of text with one style.
type markupSegment struct {
	text  string
	style markupStyle
}

// parseMarkup splits s into styled segments.
func parseMarkup(s string) []markupSegment {
	var (
		segments []markupSegment
		current  markupStyle
		text     strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, markupSegment{text: text.String(), style: current})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] == '[' {
			if end := strings.IndexByte(s[i+1:], ']'); end >= 0 {
				tag := s[i+1 : i+1+end]
				if next, ok := current.applyTag(tag); ok {
					flush()
					current = next
					i += end + 2
					continue
				}
			}
		}
		text.WriteByte(s[i])
		i++
	}
	flush()
	return segments
}

// StripMarkup removes known tags and returns the plain text.
func StripMarkup(s string) string {
	var b strings.Builder
	for _, seg := range parseMarkup(s) {
		b.WriteString(seg.text)
	}
	return b.String()
}

// RenderMarkup renders s with r. Each line is styled on its own so lipgloss
// does not pad multi-line segments into a block.
func RenderMarkup(r *lipgloss.Renderer, s string) string {
	var b strings.Builder
	for _, seg := range parseMarkup(s) {
		if seg.style.plain() {
			b.WriteString(seg.text)
			continue
		}
		st := seg.style.lipgloss(r)
		for i, line := range strings.Split(seg.text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(st.Render(line))
			}
		}
	}
	return b.String()
}
