// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// =============================================================================
// LINE SOURCES
// =============================================================================

// LineReader reads one line after showing a prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// linerReader provides line editing on an interactive terminal.
type linerReader struct {
	state *liner.State
}

// NewTerminalReader returns a line-editing reader. Use it only when stdin is
// a terminal.
func NewTerminalReader() LineReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &linerReader{state: state}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return line, nil
}

func (r *linerReader) Close() error {
	return r.state.Close()
}

// bufReader reads lines from any reader, e.g. piped stdin or tests.
type bufReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStreamReader returns a reader that writes prompts to out and reads
// answers from in.
func NewStreamReader(in io.Reader, out io.Writer) LineReader {
	return &bufReader{in: bufio.NewReader(in), out: out}
}

func (r *bufReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *bufReader) Close() error {
	return nil
}

// =============================================================================
// LINE PROMPTER
// =============================================================================

// LinePrompter asks questions one line at a time.
type LinePrompter struct {
	in     LineReader
	out    io.Writer
	render func(string) string

	// promptRender converts question text; it defaults to render.
	promptRender func(string) string
}

// NewLinePrompter creates a prompter. render converts markup for out; nil
// prints markup unchanged.
func NewLinePrompter(in LineReader, out io.Writer, render func(string) string) *LinePrompter {
	if render == nil {
		render = func(s string) string { return s }
	}
	return &LinePrompter{in: in, out: out, render: render, promptRender: render}
}

// SetPromptRender replaces the conversion applied to question text. Line
// editors that measure the prompt need it free of escape sequences.
func (p *LinePrompter) SetPromptRender(fn func(string) string) {
	if fn != nil {
		p.promptRender = fn
	}
}

// Ask implements Prompter.
func (p *LinePrompter) Ask(ctx context.Context, q Question) (string, error) {
	q.Text = p.promptRender(q.Text)
	for {
		answer, err := p.readLine(ctx, q.Prompt())
		if err != nil {
			return "", err
		}
		if v, ok := q.accept(answer); ok {
			return v, nil
		}
		if q.Invalid != "" {
			fmt.Fprintln(p.out, p.render(q.Invalid))
		}
	}
}

// Select implements Prompter.
func (p *LinePrompter) Select(ctx context.Context, q Question, menu Menu) (string, error) {
	for _, line := range menu.Lines() {
		fmt.Fprintln(p.out, line)
	}
	fmt.Fprintln(p.out)
	q.Choices = menu.Choices()
	return p.Ask(ctx, q)
}

// Pause implements Prompter. Closed input counts as acknowledgment.
func (p *LinePrompter) Pause(ctx context.Context, message string) error {
	_, err := p.readLine(ctx, p.render(message))
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

// Close implements Prompter.
func (p *LinePrompter) Close() error {
	return p.in.Close()
}

// readLine reads in the background so a cancelled context unblocks the caller.
func (p *LinePrompter) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadLine(prompt)
		ch <- result{line, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
