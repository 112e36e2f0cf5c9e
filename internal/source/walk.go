package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/treecombo/internal/tree"
)

// Walk fetches the tree breadth first down to depth levels (depth 1 loads only
// the top level) with at most limit fetches in flight, and returns the
// resulting store. The first failing fetch aborts the walk.
func Walk(ctx context.Context, f Fetcher, depth, limit int) (tree.Store, error) {
	store := tree.NewStore()
	if depth <= 0 {
		return store, nil
	}
	if limit <= 0 {
		limit = 8
	}
	frontier := []string{tree.RootKey}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		results := make([][]tree.Node, len(frontier))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, key := range frontier {
			g.Go(func() error {
				nodes, err := f.FetchChildren(gctx, tree.ParentOf(key))
				if err != nil {
					return err
				}
				results[i] = nodes
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return store, err
		}
		var next []string
		for i, key := range frontier {
			store = store.WithChildren(key, results[i])
			for _, n := range results[i] {
				if n.HasChildren {
					next = append(next, n.ID)
				}
			}
		}
		frontier = next
	}
	return store, nil
}
