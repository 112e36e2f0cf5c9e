package ui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/atomicstack/treecombo/internal/backend"
	"github.com/atomicstack/treecombo/internal/logging"
	"github.com/atomicstack/treecombo/internal/source"
	"github.com/atomicstack/treecombo/internal/tree"
)

// fakeTree answers fetches from a fixed map keyed by parent id. Parents
// listed in failures fail until they are removed.
type fakeTree struct {
	mu       sync.Mutex
	children map[string][]tree.Node
	failures map[string]error
	calls    map[string]int
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		children: map[string][]tree.Node{
			"": {
				{ID: "a", Label: "Alpha", HasChildren: true},
				{ID: "b", Label: "Beta", HasChildren: true},
				{ID: "c", Label: "Gamma"},
			},
			"a":  {{ID: "a1", Label: "Alpha One"}, {ID: "a2", Label: "Alpha Two"}},
			"b":  {{ID: "b1", Label: "Beta One", HasChildren: true}},
			"b1": {{ID: "b1x", Label: "Deep"}},
		},
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeTree) FetchChildren(_ context.Context, parentID string) ([]tree.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[parentID]++
	if err := f.failures[parentID]; err != nil {
		return nil, err
	}
	return tree.CloneNodes(f.children[parentID]), nil
}

func (f *fakeTree) fail(parentID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, parentID)
		return
	}
	f.failures[parentID] = err
}

func (f *fakeTree) callsFor(parentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[parentID]
}

func quietLogs(t *testing.T) {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "treecombo.log"))
	t.Cleanup(func() { logging.Configure("") })
}

func startHarness(t *testing.T, fetcher source.Fetcher, opts Options) *Harness {
	t.Helper()
	quietLogs(t)
	opts.Fetcher = fetcher
	h := NewHarness(NewModel(opts))
	h.Start()
	return h
}

func visibleIDs(h *Harness) []string {
	return h.Model().visible()
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestInitLoadsRootAndFocusesFirst(t *testing.T) {
	fake := newFakeTree()
	h := startHarness(t, fake, Options{})
	if got := visibleIDs(h); !equalIDs(got, "a", "b", "c") {
		t.Fatalf("expected root children visible, got %v", got)
	}
	if h.Model().Focused() != "a" {
		t.Fatalf("expected focus on first entry, got %q", h.Model().Focused())
	}
	if fake.callsFor("") != 1 {
		t.Fatalf("expected one root fetch, got %d", fake.callsFor(""))
	}
}

func TestRootFailureCanBeRetried(t *testing.T) {
	fake := newFakeTree()
	fake.fail("", errors.New("offline"))
	h := startHarness(t, fake, Options{})
	if h.Model().errMsg != "fetch children of root: offline" {
		t.Fatalf("unexpected error message %q", h.Model().errMsg)
	}
	if len(visibleIDs(h)) != 0 {
		t.Fatalf("expected no rows after root failure")
	}

	fake.fail("", nil)
	h.SendKeys("ctrl+r")
	if h.Model().errMsg != "" {
		t.Fatalf("expected error cleared after retry, got %q", h.Model().errMsg)
	}
	if got := visibleIDs(h); !equalIDs(got, "a", "b", "c") {
		t.Fatalf("expected root loaded after retry, got %v", got)
	}
	if h.Model().Focused() != "a" {
		t.Fatalf("expected focus on first entry after retry, got %q", h.Model().Focused())
	}
}

func TestBranchFailureLeavesSiblingsAlone(t *testing.T) {
	fake := newFakeTree()
	fake.fail("a", errors.New("denied"))
	h := startHarness(t, fake, Options{})
	h.SendKeys("down", "space", "up", "right")

	snap := h.Model().Snapshot()
	if _, failed := snap.FailureFor("a"); !failed {
		t.Fatalf("expected failure recorded for a")
	}
	if snap.Selections.Get("b") != tree.Checked {
		t.Fatalf("expected sibling selection kept, got %s", snap.Selections.Get("b"))
	}
	if h.Model().errMsg != "" {
		t.Fatalf("branch failures should not set the root error, got %q", h.Model().errMsg)
	}

	fake.fail("a", nil)
	h.SendKeys("ctrl+r")
	if got := visibleIDs(h); !equalIDs(got, "a", "a1", "a2", "b", "c") {
		t.Fatalf("expected a's children after retry, got %v", got)
	}
}

func TestAcceptReturnsCheckedNodes(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("right", "down", "space", "down", "down", "space", "ctrl+d")
	if !h.Quit() {
		t.Fatalf("expected accept to quit")
	}
	res := h.Model().Result()
	if !res.Accepted {
		t.Fatalf("expected accepted result")
	}
	var ids []string
	for _, n := range res.Checked {
		ids = append(ids, n.ID)
	}
	if !equalIDs(ids, "a1", "b") {
		t.Fatalf("expected a1 and b checked, got %v", ids)
	}
}

func TestCancelDiscardsLateResults(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	ticket, ok := h.Model().tree.BeginLoad("a")
	if !ok {
		t.Fatalf("expected load for a to start")
	}
	h.SendKeys("ctrl+c")
	if !h.Quit() || h.Model().Result().Accepted {
		t.Fatalf("expected cancelled quit, got %#v", h.Model().Result())
	}
	h.Send(h.Model().bus.Fetch(ticket)())
	if h.Model().Snapshot().Store.Loaded("a") {
		t.Fatalf("expected result after close to be discarded")
	}
}

func TestSourceChangeReloadsExpandedBranches(t *testing.T) {
	fake := newFakeTree()
	h := startHarness(t, fake, Options{})
	h.SendKeys("right", "down", "space")

	fake.mu.Lock()
	fake.children["a"] = append(fake.children["a"], tree.Node{ID: "a3", Label: "Alpha Three"})
	fake.mu.Unlock()

	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindSourceChanged, Path: "tree.yaml"}})
	if got := visibleIDs(h); !equalIDs(got, "a", "a1", "a2", "a3", "b", "c") {
		t.Fatalf("expected expanded branch reloaded, got %v", got)
	}
	if fake.callsFor("a") != 2 {
		t.Fatalf("expected a fetched again, got %d calls", fake.callsFor("a"))
	}
	snap := h.Model().Snapshot()
	if snap.Selections.Get("a1") != tree.Checked {
		t.Fatalf("expected selection kept across reload")
	}
	if h.Model().Focused() != "a1" {
		t.Fatalf("expected focus kept across reload, got %q", h.Model().Focused())
	}
	if h.Model().currentInfo() == "" {
		t.Fatalf("expected reload notice")
	}
}

func TestWatchErrorsAreReported(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindSourceRemoved, Err: backend.ErrSourceRemoved}})
	if h.Model().currentInfo() == "" {
		t.Fatalf("expected watch problem surfaced as info")
	}
	if !h.Model().Snapshot().Store.Loaded(tree.RootKey) {
		t.Fatalf("expected tree untouched by a watch error")
	}
}
