package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atomicstack/treecombo/internal/testutil"
	"github.com/atomicstack/treecombo/internal/tree"
)

func ids(nodes []tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestRandomMatchesDemoShape(t *testing.T) {
	r := NewRandom(0, 0, 42)
	nodes, err := r.FetchChildren(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, nodes, DefaultFanout)
	require.Equal(t, "root-0", nodes[0].ID)
	require.Equal(t, "Node root-0", nodes[0].Label)
	require.Empty(t, nodes[0].ParentID)

	children, err := r.FetchChildren(context.Background(), "root-3")
	require.NoError(t, err)
	require.Equal(t, "root-3-19", children[19].ID)
	require.Equal(t, "root-3", children[19].ParentID)
}

func TestRandomIsDeterministicPerSeed(t *testing.T) {
	a, err := NewRandom(0, 5, 7).FetchChildren(context.Background(), "")
	require.NoError(t, err)
	b, err := NewRandom(0, 5, 7).FetchChildren(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRandomHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandom(time.Hour, 1, 1).FetchChildren(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
}

const sampleYAML = `
- id: fruit
  label: Fruit
  children:
    - id: apple
      label: Apple
    - id: citrus
      children:
        - id: lemon
- id: veg
  label: Vegetables
  has_children: true
`

func TestFileServesNestedYAML(t *testing.T) {
	f, err := NewFile(testutil.WriteFile(t, "tree.yaml", sampleYAML))
	require.NoError(t, err)
	ctx := context.Background()

	roots, err := f.FetchChildren(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"fruit", "veg"}, ids(roots))
	require.True(t, roots[0].HasChildren)
	require.True(t, roots[1].HasChildren, "explicit has_children wins")

	fruit, err := f.FetchChildren(ctx, "fruit")
	require.NoError(t, err)
	require.Equal(t, []string{"apple", "citrus"}, ids(fruit))
	require.False(t, fruit[0].HasChildren)
	require.Equal(t, "citrus", fruit[1].Label, "label defaults to id")
	require.Equal(t, "fruit", fruit[1].ParentID)

	veg, err := f.FetchChildren(ctx, "veg")
	require.NoError(t, err)
	require.Empty(t, veg)

	_, err = f.FetchChildren(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileServesJSON(t *testing.T) {
	path := testutil.WriteFile(t, "tree.json", `[{"id":"a","label":"Alpha","children":[{"id":"b"}]}]`)
	f, err := NewFile(path)
	require.NoError(t, err)
	children, err := f.FetchChildren(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids(children))
}

func TestFileRejectsBadTrees(t *testing.T) {
	_, err := NewFile(testutil.WriteFile(t, "dup.yaml", "- id: a\n- id: a\n"))
	require.ErrorContains(t, err, "duplicate node id")

	_, err = NewFile(testutil.WriteFile(t, "noid.yaml", "- label: nameless\n"))
	require.ErrorContains(t, err, "has no id")

	_, err = NewFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestFileReloadsAfterChange(t *testing.T) {
	path := testutil.WriteFile(t, "tree.yaml", "- id: a\n")
	f, err := NewFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- id: a\n- id: bb\n"), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	roots, err := f.FetchChildren(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "bb"}, ids(roots))
}

func TestSQLiteServesOrderedChildren(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, "", tree.Node{ID: "b", Label: "Bravo"}, tree.Node{ID: "a", Label: "Alpha"}))
	require.NoError(t, db.Insert(ctx, "a", tree.Node{ID: "a1"}))

	roots, err := db.FetchChildren(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, ids(roots), "insertion order is kept")
	require.False(t, roots[0].HasChildren)
	require.True(t, roots[1].HasChildren)

	children, err := db.FetchChildren(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []tree.Node{{ID: "a1", Label: "a1", ParentID: "a"}}, children)

	_, err = db.FetchChildren(ctx, "zzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRejectsCyclicRows(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nodes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	require.NoError(t, db.Insert(ctx, "", tree.Node{ID: tree.RootKey}))
	_, err = db.FetchChildren(ctx, "")
	require.ErrorContains(t, err, "reserved")

	require.NoError(t, db.Insert(ctx, "", tree.Node{ID: "a"}))
	require.NoError(t, db.Insert(ctx, "a", tree.Node{ID: "a1"}))
	_, err = db.db.ExecContext(ctx, `UPDATE nodes SET parent_id = 'a1' WHERE id = 'a1'`)
	require.NoError(t, err)
	_, err = db.FetchChildren(ctx, "a1")
	require.ErrorContains(t, err, "itself")
}

func TestDedupeSharesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	slow := FetcherFunc(func(ctx context.Context, parentID string) ([]tree.Node, error) {
		calls.Add(1)
		<-release
		return []tree.Node{{ID: "x", Label: "x"}}, nil
	})
	d := NewDedupe(slow)

	var wg sync.WaitGroup
	results := make([][]tree.Node, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nodes, err := d.FetchChildren(context.Background(), "p")
			if err == nil {
				results[i] = nodes
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, nodes := range results {
		require.Equal(t, []string{"x"}, ids(nodes))
	}
	results[0][0].ID = "mutated"
	require.Equal(t, "x", results[1][0].ID, "callers get independent copies")
}

func TestDedupeCancelsAbandonedCall(t *testing.T) {
	stopped := make(chan struct{})
	blocking := FetcherFunc(func(ctx context.Context, parentID string) ([]tree.Node, error) {
		<-ctx.Done()
		close(stopped)
		return nil, ctx.Err()
	})
	d := NewDedupe(blocking)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.FetchChildren(ctx, "p")
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("expected the shared fetch to be cancelled")
	}
}

func TestDedupeKeepsCallForRemainingWaiters(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	slow := FetcherFunc(func(ctx context.Context, parentID string) ([]tree.Node, error) {
		calls.Add(1)
		select {
		case <-release:
			return []tree.Node{{ID: "x", Label: "x"}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	d := NewDedupe(slow)

	early, leave := context.WithCancel(context.Background())
	left := make(chan error, 1)
	go func() {
		_, err := d.FetchChildren(early, "p")
		left <- err
	}()
	stay := make(chan []tree.Node, 1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		nodes, err := d.FetchChildren(context.Background(), "p")
		if err != nil {
			nodes = nil
		}
		stay <- nodes
	}()
	time.Sleep(40 * time.Millisecond)
	leave()
	require.ErrorIs(t, <-left, context.Canceled)

	close(release)
	require.Equal(t, []string{"x"}, ids(<-stay))
	require.Equal(t, int32(1), calls.Load())
}

func TestThrottledSpacesFetches(t *testing.T) {
	f := NewThrottled(NewRandom(0, 1, 1), 30*time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.FetchChildren(context.Background(), "")
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	base := NewRandom(0, 1, 1)
	require.Same(t, base, NewThrottled(base, 0))
}

func TestWalkLoadsToDepth(t *testing.T) {
	f, err := NewFile(testutil.WriteFile(t, "tree.yaml", sampleYAML))
	require.NoError(t, err)

	store, err := Walk(context.Background(), f, 2, 2)
	require.NoError(t, err)
	require.True(t, store.Loaded(tree.RootKey))
	require.True(t, store.Loaded("fruit"))
	require.True(t, store.Loaded("veg"))
	require.False(t, store.Loaded("citrus"), "third level is beyond depth")

	full, err := Walk(context.Background(), f, 5, 0)
	require.NoError(t, err)
	require.True(t, full.Loaded("citrus"))
	require.Equal(t, []string{"fruit", "apple", "citrus", "lemon", "veg"}, full.Descendants(tree.RootKey))
}

func TestWalkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	f := FetcherFunc(func(ctx context.Context, parentID string) ([]tree.Node, error) {
		if parentID == "" {
			return []tree.Node{{ID: "a", HasChildren: true}}, nil
		}
		return nil, boom
	})
	_, err := Walk(context.Background(), f, 3, 1)
	require.ErrorIs(t, err, boom)
}

func TestOpenResolvesKinds(t *testing.T) {
	src, err := Open(Options{Kind: KindRandom, Fanout: 3, Seed: 1})
	require.NoError(t, err)
	require.False(t, src.Watchable())
	nodes, err := src.FetchChildren(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	require.NoError(t, src.Close())

	src, err = Open(Options{Kind: KindSQLite, Path: filepath.Join(t.TempDir(), "n.db")})
	require.NoError(t, err)
	require.True(t, src.Watchable())
	require.NoError(t, src.Close())

	_, err = Open(Options{Kind: "ldap"})
	require.ErrorIs(t, err, ErrUnknownSource)
}
