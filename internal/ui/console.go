// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders the assistant's console output: markup-styled messages,
// screen clearing and download progress.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Console writes styled text to a terminal (or any writer).
type Console struct {
	out      io.Writer
	output   *termenv.Output
	renderer *lipgloss.Renderer
	clear    bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithoutColor forces plain output regardless of the terminal.
func WithoutColor() ConsoleOption {
	return func(c *Console) { c.renderer.SetColorProfile(termenv.Ascii) }
}

// WithClearScreen enables screen clearing between steps. Leave it off when
// the output is not a terminal.
func WithClearScreen(enabled bool) ConsoleOption {
	return func(c *Console) { c.clear = enabled }
}

// NewConsole creates a console on w. The color profile is detected from w
// and honors NO_COLOR.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	output := termenv.NewOutput(w)
	c := &Console{
		out:      w,
		output:   output,
		renderer: lipgloss.NewRenderer(w),
	}
	c.renderer.SetColorProfile(output.EnvColorProfile())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Writer returns the underlying writer, e.g. for subprocess output.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Renderer returns the lipgloss renderer bound to this console.
func (c *Console) Renderer() *lipgloss.Renderer {
	return c.renderer
}

// Render converts markup into styled text without printing it.
func (c *Console) Render(markup string) string {
	return RenderMarkup(c.renderer, markup)
}

// Print renders markup followed by a newline.
func (c *Console) Print(markup string) {
	fmt.Fprintln(c.out, c.Render(markup))
}

// Println prints an empty line.
func (c *Console) Println() {
	fmt.Fprintln(c.out)
}

// Clear clears the screen when enabled.
func (c *Console) Clear() {
	if c.clear {
		c.output.ClearScreen()
	}
}
