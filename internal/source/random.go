package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/atomicstack/treecombo/internal/tree"
)

const (
	DefaultDelay  = 500 * time.Millisecond
	DefaultFanout = 20
)

// Random is the demo backend: every parent has Fanout children named after
// it, each with a coin-flip HasChildren.
type Random struct {
	delay  time.Duration
	fanout int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a random tree source. A zero seed uses the clock.
func NewRandom(delay time.Duration, fanout int, seed int64) *Random {
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{delay: delay, fanout: fanout, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error) {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	prefix := tree.KeyFor(parentID)
	r.mu.Lock()
	defer r.mu.Unlock()
	nodes := make([]tree.Node, r.fanout)
	for i := range nodes {
		id := fmt.Sprintf("%s-%d", prefix, i)
		nodes[i] = tree.Node{
			ID:          id,
			Label:       "Node " + id,
			HasChildren: r.rng.Intn(2) == 0,
			ParentID:    parentID,
		}
	}
	return nodes, nil
}
