// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// MENU MODEL
// =============================================================================

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var menuKeys = menuKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	menuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	menuDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// menuModel is a cursor-driven list. Typing an item key selects it directly;
// when the typed key is also the prefix of a longer key ("1" and "10") the
// cursor moves to it and enter confirms.
type menuModel struct {
	title   string
	items   []Item
	cursor  int
	typed   string
	chosen  string
	aborted bool
	width   int
}

func newMenuModel(title string, menu Menu, def string) menuModel {
	m := menuModel{title: title, items: menu.Items, width: 80}
	for i, it := range menu.Items {
		if it.Key == def {
			m.cursor = i
		}
	}
	return m
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, menuKeys.Quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, menuKeys.Up):
			m.typed = ""
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, menuKeys.Down):
			m.typed = ""
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, menuKeys.Select):
			if len(m.items) > 0 {
				m.chosen = m.items[m.cursor].Key
				return m, tea.Quit
			}
			return m, nil
		case msg.Type == tea.KeyBackspace:
			m.typed = ""
			return m, nil
		case msg.Type == tea.KeyRunes:
			return m.typeKey(string(msg.Runes))
		}
	}
	return m, nil
}

// typeKey extends the typed key with s, starting over when nothing matches.
func (m menuModel) typeKey(s string) (tea.Model, tea.Cmd) {
	typed := m.typed + s
	if m.prefixMatches(typed) == 0 {
		typed = s
	}
	if m.prefixMatches(typed) == 0 {
		m.typed = ""
		return m, nil
	}
	m.typed = typed

	exact, first := -1, -1
	for i, it := range m.items {
		if !strings.HasPrefix(it.Key, typed) {
			continue
		}
		if first < 0 {
			first = i
		}
		if it.Key == typed {
			exact = i
		}
	}
	if exact >= 0 {
		m.cursor = exact
		if m.prefixMatches(typed) == 1 {
			m.chosen = typed
			return m, tea.Quit
		}
		return m, nil
	}
	m.cursor = first
	return m, nil
}

func (m menuModel) prefixMatches(typed string) int {
	n := 0
	for _, it := range m.items {
		if strings.HasPrefix(it.Key, typed) {
			n++
		}
	}
	return n
}

func (m menuModel) View() string {
	if m.chosen != "" || m.aborted {
		return ""
	}
	var b strings.Builder
	if m.title != "" {
		b.WriteString(menuTitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}
	labelWidth := m.width - 8
	if labelWidth < 10 {
		labelWidth = 10
	}
	for i, it := range m.items {
		line := it.Key + ". " + runewidth.Truncate(it.Label, labelWidth, "…")
		if i == m.cursor {
			b.WriteString(menuSelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(menuDimStyle.Render("↑/↓ or number move • enter select • esc quit"))
	b.WriteByte('\n')
	return b.String()
}

// =============================================================================
// MENU PROMPTER
// =============================================================================

// MenuPrompter shows menus as an interactive list and falls back to line
// prompts for free-form questions.
type MenuPrompter struct {
	*LinePrompter
	in  io.Reader
	out io.Writer
}

// NewMenuPrompter creates a prompter that renders menus with bubbletea on
// in/out and uses line for everything else.
func NewMenuPrompter(line *LinePrompter, in io.Reader, out io.Writer) *MenuPrompter {
	return &MenuPrompter{LinePrompter: line, in: in, out: out}
}

// Select implements Prompter.
func (p *MenuPrompter) Select(ctx context.Context, q Question, menu Menu) (string, error) {
	program := tea.NewProgram(
		newMenuModel(p.promptRender(q.Text), menu, q.Default),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	)
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrAborted
		}
		return "", err
	}
	m := final.(menuModel)
	if m.aborted || m.chosen == "" {
		return "", ErrAborted
	}
	return m.chosen, nil
}
