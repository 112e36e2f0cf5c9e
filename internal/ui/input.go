package ui

import (
	"unicode"

	"github.com/atomicstack/treecombo/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const queryPlaceholder = "Search nodes…"

// handleTextInput edits the query. Any change to the text drops row focus.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	q := &m.query
	switch msg.String() {
	case "ctrl+u":
		return m.afterEdit(q.Clear())
	case "ctrl+w":
		return m.afterEdit(q.DeleteWordBackward())
	case "ctrl+a", "home":
		return m.afterMove(q.MoveStart())
	case "ctrl+e", "end":
		return m.afterMove(q.MoveEnd())
	case "alt+b":
		return m.afterMove(q.MoveWordBackward())
	case "alt+f":
		return m.afterMove(q.MoveWordForward())
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		return m.afterEdit(q.DeleteRuneBackward())
	case tea.KeyDelete:
		return m.afterEdit(q.DeleteRuneForward())
	case tea.KeySpace:
		return m.afterEdit(q.Insert(" "))
	case tea.KeyLeft:
		return m.afterMove(q.MoveRuneBackward())
	case tea.KeyRight:
		return m.afterMove(q.MoveRuneForward())
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false, nil
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false, nil
			}
		}
		return m.afterEdit(q.Insert(string(msg.Runes)))
	}
	return false, nil
}

func (m *Model) afterEdit(changed bool) (bool, tea.Cmd) {
	if !changed {
		return false, nil
	}
	m.clearFocus()
	m.nav.Offset = 0
	m.forceClearInfo()
	if m.query.Text == "" {
		events.Filter.Cleared()
	} else {
		events.Filter.Changed(m.query.Text, len(m.visible()))
	}
	m.caretDirty = true
	return true, nil
}

func (m *Model) afterMove(moved bool) (bool, tea.Cmd) {
	if !moved {
		return false, nil
	}
	events.Filter.Cursor(m.query.Cursor)
	m.caretDirty = true
	return true, nil
}

func (m *Model) handleCaretBlink(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.caret, cmd = m.caret.Update(msg)
	return cmd
}

// queryPrompt renders the prompt with the blinking caret. The caret is only
// drawn while the query has focus.
func (m *Model) queryPrompt() string {
	prompt := render(styles.FilterPrompt, "» ")
	showCaret := m.nav.Focused == ""
	text := m.query.Text
	if text == "" {
		runes := []rune(queryPlaceholder)
		if !showCaret {
			return prompt + render(styles.Placeholder, queryPlaceholder)
		}
		return prompt + m.renderCaret(string(runes[0]), styles.Placeholder) + render(styles.Placeholder, string(runes[1:]))
	}
	if !showCaret {
		return prompt + render(styles.Filter, text)
	}
	runes := []rune(text)
	pos := m.query.Pos()
	before := render(styles.Filter, string(runes[:pos]))
	caretRune, after := " ", ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + m.renderCaret(caretRune, styles.Filter) + after
}

// renderCaret draws char under the caret. While the blink is in its off
// phase the character is drawn with the surrounding text style.
func (m *Model) renderCaret(char string, text *lipgloss.Style) string {
	m.caret.TextStyle = lipgloss.NewStyle()
	if text != nil {
		m.caret.TextStyle = *text
	}
	m.caret.SetChar(char)
	return m.caret.View()
}

func render(style *lipgloss.Style, value string) string {
	if style == nil || value == "" {
		return value
	}
	return style.Render(value)
}
