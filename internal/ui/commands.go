package ui

import (
	"fmt"

	"github.com/atomicstack/treecombo/internal/logging"
	"github.com/atomicstack/treecombo/internal/logging/events"
	"github.com/atomicstack/treecombo/internal/state"
	"github.com/atomicstack/treecombo/internal/tree"
	"github.com/atomicstack/treecombo/internal/ui/command"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// loadChildren requests the children of key unless they are already loaded
// or a fetch for them is in flight.
func (m *Model) loadChildren(key string) tea.Cmd {
	ticket, ok := m.tree.BeginLoad(key)
	if !ok {
		events.Fetch.Skip(key)
		return nil
	}
	events.Fetch.Begin(ticket.Key, ticket.Generation)
	return tea.Batch(m.bus.Fetch(ticket), m.startSpinner())
}

func (m *Model) handleFetchResult(msg tea.Msg) tea.Cmd {
	res, ok := msg.(command.FetchResult)
	if !ok {
		return nil
	}
	hadRows := len(m.visible()) > 0
	outcome := m.tree.CompleteLoad(res.Ticket, res.Nodes, res.Err)
	events.Fetch.Done(res.Ticket.Key, outcome.String(), len(res.Nodes), res.Elapsed)
	switch outcome {
	case state.OutcomeStale, state.OutcomeDuplicate:
		return nil
	case state.OutcomeFailed:
		failure, _ := m.tree.Snapshot().FailureFor(res.Ticket.Key)
		events.Fetch.Failed(res.Ticket.Key, failure)
		logging.Error(failure)
		if res.Ticket.Key == tree.RootKey {
			m.errMsg = failure.Error()
		}
		return nil
	}
	visible := m.visible()
	if !hadRows && m.nav.Focused == "" && len(visible) > 0 {
		if m.nav.FocusFirst(visible) {
			events.Focus.Move(m.nav.Focused)
		}
	}
	m.syncViewport(visible)
	return m.syncLoads(visible)
}

// syncLoads fetches every visible expanded branch whose children are missing,
// which is how expanded branches come back after the tree was invalidated.
func (m *Model) syncLoads(visible []string) tea.Cmd {
	snap := m.tree.Snapshot()
	var cmds []tea.Cmd
	for _, id := range visible {
		if !snap.Expanded.Has(id) || snap.Store.Loaded(id) || snap.IsLoading(id) {
			continue
		}
		if _, failed := snap.FailureFor(id); failed {
			continue
		}
		if n, ok := snap.Store.Node(id); ok && !n.HasChildren {
			continue
		}
		if cmd := m.loadChildren(id); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// retry fetches a failed branch again: the focused one, or the root when the
// root itself failed.
func (m *Model) retry() tea.Cmd {
	snap := m.tree.Snapshot()
	key := tree.RootKey
	if _, rootFailed := snap.FailureFor(tree.RootKey); !rootFailed {
		if m.nav.Focused == "" {
			return nil
		}
		key = m.nav.Focused
		if _, failed := snap.FailureFor(key); !failed {
			return nil
		}
	}
	m.errMsg = ""
	m.setInfo(fmt.Sprintf("Retrying %s…", m.labelFor(key)))
	return m.loadChildren(key)
}

// reload drops every loaded child list and fetches the root again. Expansion,
// selection and focus survive.
func (m *Model) reload(reason string) tea.Cmd {
	events.Tree.Reload(reason)
	m.tree.Invalidate()
	m.errMsg = ""
	return m.loadChildren(tree.RootKey)
}

func (m *Model) labelFor(key string) string {
	if key == tree.RootKey {
		return "root"
	}
	if n, ok := m.tree.Snapshot().Store.Node(key); ok {
		return n.Label
	}
	return key
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// handleSpinnerTick keeps the spinner running only while something loads.
func (m *Model) handleSpinnerTick(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	if len(m.tree.Snapshot().Loading) == 0 {
		m.spinning = false
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)
	return cmd
}
