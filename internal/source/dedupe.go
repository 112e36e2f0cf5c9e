package source

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/atomicstack/treecombo/internal/tree"
)

// Dedupe collapses concurrent fetches for the same parent into one call.
// Each caller receives its own copy of the result. The shared call is
// cancelled once every caller waiting on it has gone away.
type Dedupe struct {
	next  Fetcher
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func NewDedupe(next Fetcher) *Dedupe {
	return &Dedupe{next: next, flights: map[string]*flight{}}
}

func (d *Dedupe) FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error) {
	key := tree.KeyFor(parentID)

	d.mu.Lock()
	f := d.flights[key]
	if f == nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		d.flights[key] = f
	}
	f.waiters++
	ch := d.group.DoChan(key, func() (any, error) {
		return d.next.FetchChildren(f.ctx, parentID)
	})
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		d.leave(key, f, true)
		return nil, ctx.Err()
	case res := <-ch:
		d.leave(key, f, false)
		if res.Err != nil {
			return nil, res.Err
		}
		nodes, _ := res.Val.([]tree.Node)
		return tree.CloneNodes(nodes), nil
	}
}

// leave drops one waiter from f. The last waiter retires the flight; when it
// left early the shared call is cancelled and forgotten so the next caller
// starts afresh.
func (d *Dedupe) leave(key string, f *flight, abandoned bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if d.flights[key] == f {
		delete(d.flights, key)
	}
	if abandoned {
		d.group.Forget(key)
	}
	f.cancel()
}
