package dispatcher

import (
	"github.com/atomicstack/treecombo/internal/backend"
	"github.com/atomicstack/treecombo/internal/logging/events"
	"github.com/atomicstack/treecombo/internal/state"
)

// Result reports what Handle changed.
type Result struct {
	Invalidated bool
	Err         error
}

type Dispatcher struct {
	tree state.TreeStore
}

func New(tree state.TreeStore) *Dispatcher {
	return &Dispatcher{tree: tree}
}

// Handle applies a watcher event to the tree store. A changed source drops
// every loaded child list so the UI fetches again; removal and watch errors
// are reported without touching state.
func (d *Dispatcher) Handle(evt backend.Event) Result {
	switch evt.Kind {
	case backend.KindSourceChanged:
		events.Source.Changed(evt.Path)
		d.tree.Invalidate()
		return Result{Invalidated: true}
	default:
		events.Source.WatchError(evt.Err)
		return Result{Err: evt.Err}
	}
}
