package state

import (
	"fmt"
	"maps"
	"sync"

	"github.com/atomicstack/treecombo/internal/tree"
)

// FetchFailedError records a child fetch that did not complete.
type FetchFailedError struct {
	ParentID string
	Err      error
}

func (e *FetchFailedError) Error() string {
	parent := e.ParentID
	if parent == "" {
		parent = tree.RootKey
	}
	return fmt.Sprintf("fetch children of %s: %v", parent, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Ticket identifies one in-flight load. Results carrying a ticket from an
// older generation are discarded.
type Ticket struct {
	Key        string
	Generation uint64
}

// LoadOutcome describes what CompleteLoad did with a result.
type LoadOutcome int

const (
	OutcomeLoaded LoadOutcome = iota
	OutcomeDuplicate
	OutcomeFailed
	OutcomeStale
)

func (o LoadOutcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "stale"
	}
}

// Snapshot is an immutable view of the tree state. Containers are replaced,
// never mutated, so a snapshot stays consistent after later updates.
type Snapshot struct {
	Store      tree.Store
	Expanded   tree.Expansion
	Selections tree.Selections
	Loading    map[string]struct{}
	Failed     map[string]*FetchFailedError
	Generation uint64
	Closed     bool
}

// IsLoading reports whether a fetch for key is in flight.
func (s Snapshot) IsLoading(key string) bool {
	_, ok := s.Loading[key]
	return ok
}

// FailureFor returns the recorded failure for key, if any.
func (s Snapshot) FailureFor(key string) (*FetchFailedError, bool) {
	err, ok := s.Failed[key]
	return err, ok
}

// TreeStore owns the node store, expansion set and selection map. All
// updates swap in new containers.
type TreeStore interface {
	Snapshot() Snapshot
	BeginLoad(key string) (Ticket, bool)
	CompleteLoad(ticket Ticket, children []tree.Node, err error) LoadOutcome
	ToggleExpand(id string) bool
	SetExpanded(id string, expanded bool)
	ToggleSelect(id string) tree.Selection
	Invalidate()
	Close()
}

type treeStore struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewTreeStore returns an empty tree state owner.
func NewTreeStore() TreeStore {
	return &treeStore{snap: Snapshot{
		Store:      tree.NewStore(),
		Expanded:   tree.NewExpansion(),
		Loading:    map[string]struct{}{},
		Failed:     map[string]*FetchFailedError{},
		Generation: 1,
	}}
}

func (s *treeStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *treeStore) BeginLoad(key string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Closed || s.snap.Store.Loaded(key) || s.snap.IsLoading(key) {
		return Ticket{}, false
	}
	loading := maps.Clone(s.snap.Loading)
	loading[key] = struct{}{}
	s.snap.Loading = loading
	if _, failed := s.snap.Failed[key]; failed {
		next := maps.Clone(s.snap.Failed)
		delete(next, key)
		s.snap.Failed = next
	}
	return Ticket{Key: key, Generation: s.snap.Generation}, true
}

func (s *treeStore) CompleteLoad(ticket Ticket, children []tree.Node, err error) LoadOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Closed || ticket.Generation != s.snap.Generation {
		return OutcomeStale
	}
	if s.snap.IsLoading(ticket.Key) {
		loading := maps.Clone(s.snap.Loading)
		delete(loading, ticket.Key)
		s.snap.Loading = loading
	}
	if err != nil {
		failed := maps.Clone(s.snap.Failed)
		failed[ticket.Key] = &FetchFailedError{ParentID: tree.ParentOf(ticket.Key), Err: err}
		s.snap.Failed = failed
		return OutcomeFailed
	}
	if s.snap.Store.Loaded(ticket.Key) {
		return OutcomeDuplicate
	}
	store := s.snap.Store.WithChildren(ticket.Key, children)
	s.snap.Store = store
	s.snap.Selections = s.snap.Selections.Inherit(store, ticket.Key).Reconcile(store, ticket.Key)
	return OutcomeLoaded
}

func (s *treeStore) ToggleExpand(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Expanded = s.snap.Expanded.Toggle(id)
	return s.snap.Expanded.Has(id)
}

func (s *treeStore) SetExpanded(id string, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Expanded = s.snap.Expanded.Set(id, expanded)
}

func (s *treeStore) ToggleSelect(id string) tree.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Selections = s.snap.Selections.Toggle(s.snap.Store, id)
	return s.snap.Selections.Get(id)
}

// Invalidate drops every loaded child list and in-flight load while keeping
// expansion and selection, so the tree can be fetched again.
func (s *treeStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Store = tree.NewStore()
	s.snap.Loading = map[string]struct{}{}
	s.snap.Failed = map[string]*FetchFailedError{}
	s.snap.Generation++
}

// Close discards every pending and future load result.
func (s *treeStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Closed = true
	s.snap.Loading = map[string]struct{}{}
	s.snap.Generation++
}
