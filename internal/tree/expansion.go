package tree

import (
	"maps"
	"slices"
)

// Expansion is an immutable set of expanded node identifiers.
type Expansion struct {
	ids map[string]struct{}
}

// NewExpansion builds a set containing ids.
func NewExpansion(ids ...string) Expansion {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Expansion{ids: set}
}

// Has reports whether id is expanded.
func (e Expansion) Has(id string) bool {
	_, ok := e.ids[id]
	return ok
}

// Len returns the number of expanded identifiers.
func (e Expansion) Len() int {
	return len(e.ids)
}

// Toggle returns a copy with membership of id flipped.
func (e Expansion) Toggle(id string) Expansion {
	return e.Set(id, !e.Has(id))
}

// Set returns a copy with id expanded or collapsed.
func (e Expansion) Set(id string, expanded bool) Expansion {
	if e.Has(id) == expanded {
		return e
	}
	next := maps.Clone(e.ids)
	if next == nil {
		next = map[string]struct{}{}
	}
	if expanded {
		next[id] = struct{}{}
	} else {
		delete(next, id)
	}
	return Expansion{ids: next}
}

// IDs returns the expanded identifiers sorted for stable output.
func (e Expansion) IDs() []string {
	return slices.Sorted(maps.Keys(e.ids))
}
