package ui

import (
	"github.com/atomicstack/treecombo/internal/logging/events"
	uistate "github.com/atomicstack/treecombo/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

var navKeys = map[string]uistate.NavKey{
	"up":     uistate.NavUp,
	"down":   uistate.NavDown,
	"left":   uistate.NavLeft,
	"right":  uistate.NavRight,
	"enter":  uistate.NavToggle,
	" ":      uistate.NavToggle,
	"space":  uistate.NavToggle,
	"home":   uistate.NavHome,
	"end":    uistate.NavEnd,
	"pgup":   uistate.NavPageUp,
	"pgdown": uistate.NavPageDown,
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.closed {
		return nil
	}
	visible := m.visible()
	// focus on a row that is no longer shown hands control back to the query
	if m.nav.Focused != "" && m.nav.Index(visible) < 0 {
		m.clearFocus()
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return m.cancelSelection()
	case "ctrl+d":
		return m.accept()
	case "ctrl+r":
		return m.retry()
	case "ctrl+l":
		return m.reload("manual")
	case "tab":
		if m.nav.Focused != "" {
			m.clearFocus()
			return nil
		}
	case "esc":
		if m.nav.Focused != "" {
			m.clearFocus()
			return nil
		}
		return m.cancelSelection()
	}

	if m.nav.Focused == "" {
		return m.handleQueryFocusKey(keyMsg, visible)
	}
	if key, ok := navKeys[keyMsg.String()]; ok {
		return m.applyIntent(m.nav.Handle(key, visible, m.isExpanded, m.maxVisibleItems()))
	}
	if handled, cmd := m.handleTextInput(keyMsg); handled {
		return cmd
	}
	return nil
}

// handleQueryFocusKey runs while no row is focused: keys edit the query and
// Down or Tab moves into the tree. Tab from a row returns to the query.
func (m *Model) handleQueryFocusKey(msg tea.KeyMsg, visible []string) tea.Cmd {
	switch msg.String() {
	case "down", "tab":
		if m.nav.FocusFirst(visible) {
			events.Focus.Move(m.nav.Focused)
		}
		m.syncViewport(visible)
		return nil
	case "enter":
		return m.accept()
	}
	_, cmd := m.handleTextInput(msg)
	return cmd
}

func (m *Model) applyIntent(intent uistate.Intent) tea.Cmd {
	switch intent.Kind {
	case uistate.IntentFocus:
		events.Focus.Move(intent.ID)
		m.syncViewport(m.visible())
	case uistate.IntentExpand:
		m.tree.SetExpanded(intent.ID, true)
		events.Tree.Expand(intent.ID)
		var cmd tea.Cmd
		if intent.Load {
			cmd = m.loadChildren(intent.ID)
		}
		m.syncViewport(m.visible())
		return cmd
	case uistate.IntentCollapse:
		m.tree.SetExpanded(intent.ID, false)
		events.Tree.Collapse(intent.ID)
		m.syncViewport(m.visible())
	case uistate.IntentSelect:
		selection := m.tree.ToggleSelect(intent.ID)
		events.Tree.Toggle(intent.ID, selection.String())
	}
	return nil
}

func (m *Model) clearFocus() {
	if m.nav.Clear() {
		events.Focus.Clear()
		m.caretDirty = true
	}
}

func (m *Model) accept() tea.Cmd {
	snap := m.tree.Snapshot()
	m.result = Result{Accepted: true, Checked: snap.Selections.Checked(snap.Store)}
	events.App.Accept(len(m.result.Checked))
	m.Close()
	return tea.Quit
}

func (m *Model) cancelSelection() tea.Cmd {
	m.result = Result{}
	events.App.Cancel()
	m.Close()
	return tea.Quit
}

// syncViewport keeps the focused row inside the list window.
func (m *Model) syncViewport(visible []string) {
	m.nav.EnsureVisible(m.nav.Index(visible), len(visible), m.maxVisibleItems())
}
