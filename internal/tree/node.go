package tree

// RootKey is the store key holding the top-level nodes.
const RootKey = "root"

// Node is a single tree entry as returned by a fetcher.
type Node struct {
	ID          string
	Label       string
	HasChildren bool
	// ParentID is empty for top-level nodes.
	ParentID string
}

// KeyFor maps a parent identifier onto its store key.
func KeyFor(parentID string) string {
	if parentID == "" {
		return RootKey
	}
	return parentID
}

// ParentOf maps a store key back onto a parent identifier.
func ParentOf(key string) string {
	if key == RootKey {
		return ""
	}
	return key
}

// CloneNodes produces a shallow copy of the provided nodes.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	dup := make([]Node, len(nodes))
	copy(dup, nodes)
	return dup
}
