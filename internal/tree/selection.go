package tree

import "maps"

// Selection is the tri-state checkbox value of a node.
type Selection int

const (
	Unchecked Selection = iota
	Checked
	Indeterminate
)

func (s Selection) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Selections maps node identifiers to their selection state. Missing entries
// are Unchecked. Values are immutable; every update returns a copy.
type Selections struct {
	states map[string]Selection
}

// Get returns the state of id.
func (s Selections) Get(id string) Selection {
	return s.states[id]
}

// Len returns the number of explicitly recorded states.
func (s Selections) Len() int {
	return len(s.states)
}

// Toggle flips id between checked and unchecked, pushes the value onto every
// loaded descendant and re-aggregates each loaded ancestor from its direct
// children.
func (s Selections) Toggle(store Store, id string) Selections {
	value := Checked
	if s.Get(id) == Checked {
		value = Unchecked
	}
	next := s.clone()
	next.set(id, value)
	for _, desc := range store.Descendants(id) {
		next.set(desc, value)
	}
	next.aggregateFrom(store, id)
	return next
}

// Inherit applies the state of a freshly loaded parent to its children so the
// aggregate rule keeps holding after a load. Only a checked parent pushes its
// value; an unchecked parent already matches unchecked children.
func (s Selections) Inherit(store Store, key string) Selections {
	if key == RootKey || s.Get(key) != Checked {
		return s
	}
	next := s.clone()
	for _, desc := range store.Descendants(key) {
		next.set(desc, Checked)
	}
	return next
}

// Reconcile recomputes key and its ancestors from their loaded children. A key
// without children keeps its own value.
func (s Selections) Reconcile(store Store, key string) Selections {
	if key == RootKey {
		return s
	}
	next := s.clone()
	if children := store.childrenOf(key); len(children) > 0 {
		next.set(key, Aggregate(children, next.Get))
	}
	next.aggregateFrom(store, key)
	return next
}

// Aggregate computes the state a parent must display given its direct children.
func Aggregate(children []Node, get func(string) Selection) Selection {
	if len(children) == 0 {
		return Unchecked
	}
	checked, unchecked := 0, 0
	for _, child := range children {
		switch get(child.ID) {
		case Checked:
			checked++
		case Unchecked:
			unchecked++
		}
	}
	switch {
	case checked == len(children):
		return Checked
	case unchecked == len(children):
		return Unchecked
	default:
		return Indeterminate
	}
}

// Checked returns every checked node in tree order.
func (s Selections) Checked(store Store) []Node {
	var out []Node
	store.Walk(func(n Node, _ int) {
		if s.Get(n.ID) == Checked {
			out = append(out, n)
		}
	})
	return out
}

func (s Selections) aggregateFrom(store Store, id string) {
	for _, ancestor := range store.Ancestors(id) {
		s.set(ancestor, Aggregate(store.childrenOf(ancestor), s.Get))
	}
}

func (s Selections) clone() Selections {
	next := maps.Clone(s.states)
	if next == nil {
		next = map[string]Selection{}
	}
	return Selections{states: next}
}

func (s Selections) set(id string, value Selection) {
	if value == Unchecked {
		delete(s.states, id)
		return
	}
	s.states[id] = value
}
