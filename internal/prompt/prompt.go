// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt reads constrained choices from the user.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAborted is returned when the user interrupts a prompt (Ctrl-C, Ctrl-D or
// closed input).
var ErrAborted = errors.New("prompt aborted by user")

// Item is one numbered menu entry.
type Item struct {
	Key   string
	Label string
}

// Menu is an ordered list of items. Keys are the valid answers.
type Menu struct {
	Items []Item
}

// Lines renders one "\t<key>. <label>" line per item.
func (m Menu) Lines() []string {
	lines := make([]string, len(m.Items))
	for i, it := range m.Items {
		lines[i] = fmt.Sprintf("\t%s. %s", it.Key, it.Label)
	}
	return lines
}

// Choices returns the item keys in order.
func (m Menu) Choices() []string {
	keys := make([]string, len(m.Items))
	for i, it := range m.Items {
		keys[i] = it.Key
	}
	return keys
}

// Question describes a constrained prompt.
type Question struct {
	// Text is shown before the choice list; may be empty.
	Text string
	// Choices are the accepted answers. Empty accepts anything.
	Choices []string
	// Default is returned for an empty answer when set.
	Default string
	// Invalid is markup printed before re-prompting after a rejected answer.
	Invalid string
}

// Prompt returns the prompt line, e.g. "Choose app [1/2]: ".
func (q Question) Prompt() string {
	var b strings.Builder
	b.WriteString(q.Text)
	if len(q.Choices) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("[" + strings.Join(q.Choices, "/") + "]")
	}
	if q.Default != "" {
		b.WriteString(" (" + q.Default + ")")
	}
	b.WriteString(": ")
	return b.String()
}

// accept validates an answer. Matching is exact after trimming spaces.
func (q Question) accept(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" && q.Default != "" {
		return q.Default, true
	}
	if len(q.Choices) == 0 {
		return answer, true
	}
	for _, c := range q.Choices {
		if answer == c {
			return c, true
		}
	}
	return "", false
}

// Prompter asks the user questions. Implementations re-prompt on invalid
// input, so a returned answer is always one of the choices.
type Prompter interface {
	// Ask reads one of q.Choices.
	Ask(ctx context.Context, q Question) (string, error)
	// Select shows menu and reads one of its keys.
	Select(ctx context.Context, q Question, menu Menu) (string, error)
	// Pause waits for Enter.
	Pause(ctx context.Context, message string) error
	// Close releases the terminal.
	Close() error
}
