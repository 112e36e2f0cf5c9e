package tree

import "maps"

// Store holds the lazily loaded children of each parent key. A Store value is
// never mutated after construction; WithChildren and Without return copies.
type Store struct {
	children map[string][]Node
	parents  map[string]string
	nodes    map[string]Node
}

// NewStore returns an empty store.
func NewStore() Store {
	return Store{
		children: map[string][]Node{},
		parents:  map[string]string{},
		nodes:    map[string]Node{},
	}
}

// Loaded reports whether children for key have been stored.
func (s Store) Loaded(key string) bool {
	_, ok := s.children[key]
	return ok
}

// Children returns the stored children for key in fetch order.
func (s Store) Children(key string) ([]Node, bool) {
	children, ok := s.children[key]
	if !ok {
		return nil, false
	}
	return CloneNodes(children), true
}

func (s Store) childrenOf(key string) []Node {
	return s.children[key]
}

// Node looks up a stored node by identifier.
func (s Store) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Parent returns the store key that lists id as a child.
func (s Store) Parent(id string) (string, bool) {
	key, ok := s.parents[id]
	return key, ok
}

// Len returns the number of stored nodes.
func (s Store) Len() int {
	return len(s.nodes)
}

// Keys returns the number of loaded parent keys.
func (s Store) Keys() int {
	return len(s.children)
}

// WithChildren returns a store with children recorded under key. Loading an
// already loaded key returns the receiver unchanged. Children that repeat a
// stored id, the reserved root key or key itself are dropped so the stored
// graph stays acyclic.
func (s Store) WithChildren(key string, children []Node) Store {
	if s.Loaded(key) {
		return s
	}
	next := Store{
		children: maps.Clone(s.children),
		parents:  maps.Clone(s.parents),
		nodes:    maps.Clone(s.nodes),
	}
	if next.children == nil {
		next = NewStore()
	}
	stored := make([]Node, 0, len(children))
	for _, child := range children {
		if child.ID == RootKey || child.ID == key {
			continue
		}
		if _, dup := next.nodes[child.ID]; dup {
			continue
		}
		child.ParentID = ParentOf(key)
		stored = append(stored, child)
		next.nodes[child.ID] = child
		next.parents[child.ID] = key
	}
	next.children[key] = stored
	return next
}

// Descendants returns every loaded descendant of id in pre-order.
func (s Store) Descendants(id string) []string {
	var out []string
	var walk func(key string)
	walk = func(key string) {
		for _, child := range s.children[key] {
			out = append(out, child.ID)
			walk(child.ID)
		}
	}
	walk(id)
	return out
}

// Ancestors returns the parent chain of id, nearest first, excluding the root key.
func (s Store) Ancestors(id string) []string {
	var out []string
	key, ok := s.parents[id]
	for ok && key != RootKey {
		out = append(out, key)
		key, ok = s.parents[key]
	}
	return out
}

// Depth returns how many ancestors id has; top-level nodes have depth 0.
func (s Store) Depth(id string) int {
	return len(s.Ancestors(id))
}

// Walk visits every stored node in pre-order starting at the root key.
func (s Store) Walk(fn func(n Node, depth int)) {
	var walk func(key string, depth int)
	walk = func(key string, depth int) {
		for _, child := range s.children[key] {
			fn(child, depth)
			walk(child.ID, depth+1)
		}
	}
	walk(RootKey, 0)
}
