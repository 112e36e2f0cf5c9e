package command

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/treecombo/internal/logging/events"
	"github.com/atomicstack/treecombo/internal/source"
	"github.com/atomicstack/treecombo/internal/state"
	"github.com/atomicstack/treecombo/internal/tree"
	tea "github.com/charmbracelet/bubbletea"
)

// FetchResult carries the outcome of one child fetch back to Update.
type FetchResult struct {
	Ticket  state.Ticket
	Nodes   []tree.Node
	Err     error
	Elapsed time.Duration
}

// Bus turns fetches into Bubble Tea commands bound to one context.
type Bus struct {
	ctx     context.Context
	fetcher source.Fetcher
}

// New returns a bus whose commands are cancelled with ctx.
func New(ctx context.Context, fetcher source.Fetcher) *Bus {
	return &Bus{ctx: ctx, fetcher: fetcher}
}

// Fetch wraps a child fetch for ticket into a command while emitting trace
// logs.
func (b *Bus) Fetch(ticket state.Ticket) tea.Cmd {
	label := fmt.Sprintf("fetch %s", ticket.Key)
	events.Command.Queue(ticket.Key, label)
	return func() tea.Msg {
		start := time.Now()
		nodes, err := b.fetcher.FetchChildren(b.ctx, tree.ParentOf(ticket.Key))
		msg := FetchResult{Ticket: ticket, Nodes: nodes, Err: err, Elapsed: time.Since(start)}
		events.Command.Result(ticket.Key, label, fmt.Sprintf("%T", msg))
		return msg
	}
}
