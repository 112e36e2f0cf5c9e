package source

import (
	"context"
	"time"

	"github.com/atomicstack/treecombo/internal/backend"
	"github.com/atomicstack/treecombo/internal/tree"
)

// Throttled spaces calls to the wrapped fetcher by a minimum interval.
type Throttled struct {
	next     Fetcher
	throttle *backend.Throttle
}

// NewThrottled returns next unchanged when interval is not positive.
func NewThrottled(next Fetcher, interval time.Duration) Fetcher {
	if interval <= 0 {
		return next
	}
	return &Throttled{next: next, throttle: backend.NewThrottle(interval)}
}

func (t *Throttled) FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error) {
	if err := t.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.FetchChildren(ctx, parentID)
}
