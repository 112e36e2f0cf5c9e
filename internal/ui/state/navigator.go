package state

import "slices"

// NavKey is a navigation key after keymap resolution.
type NavKey int

const (
	NavUp NavKey = iota
	NavDown
	NavLeft
	NavRight
	NavToggle
	NavHome
	NavEnd
	NavPageUp
	NavPageDown
)

// IntentKind names the tree action a key asks for.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentFocus
	IntentExpand
	IntentCollapse
	IntentSelect
)

// Intent is what the caller should apply to the tree. Load accompanies
// IntentExpand: the branch's children should be fetched if missing.
type Intent struct {
	Kind IntentKind
	ID   string
	Load bool
}

// Navigator tracks keyboard focus over the visible list and the viewport
// window onto it. An empty Focused means nothing is focused.
type Navigator struct {
	Focused string
	Offset  int
}

// Handle applies key against the current visible order. Nothing happens
// unless the focused id is visible.
func (n *Navigator) Handle(key NavKey, visible []string, expanded func(string) bool, page int) Intent {
	if n.Focused == "" {
		return Intent{}
	}
	idx := slices.Index(visible, n.Focused)
	if idx < 0 {
		return Intent{}
	}
	switch key {
	case NavDown:
		return n.moveTo(visible, idx, idx+1)
	case NavUp:
		return n.moveTo(visible, idx, idx-1)
	case NavHome:
		return n.moveTo(visible, idx, 0)
	case NavEnd:
		return n.moveTo(visible, idx, len(visible)-1)
	case NavPageDown:
		return n.moveTo(visible, idx, min(idx+pageSize(page, len(visible)), len(visible)-1))
	case NavPageUp:
		return n.moveTo(visible, idx, max(idx-pageSize(page, len(visible)), 0))
	case NavRight:
		if !expanded(n.Focused) {
			return Intent{Kind: IntentExpand, ID: n.Focused, Load: true}
		}
	case NavLeft:
		if expanded(n.Focused) {
			return Intent{Kind: IntentCollapse, ID: n.Focused}
		}
	case NavToggle:
		return Intent{Kind: IntentSelect, ID: n.Focused}
	}
	return Intent{}
}

// moveTo never wraps: targets outside the list leave focus where it is.
func (n *Navigator) moveTo(visible []string, from, to int) Intent {
	if to < 0 || to >= len(visible) || to == from {
		return Intent{}
	}
	n.Focused = visible[to]
	return Intent{Kind: IntentFocus, ID: n.Focused}
}

// FocusFirst focuses the first visible entry, or clears focus when the list
// is empty. It reports whether focus changed.
func (n *Navigator) FocusFirst(visible []string) bool {
	old := n.Focused
	n.Focused = ""
	if len(visible) > 0 {
		n.Focused = visible[0]
	}
	n.Offset = 0
	return old != n.Focused
}

// Clear drops focus.
func (n *Navigator) Clear() bool {
	if n.Focused == "" {
		return false
	}
	n.Focused = ""
	return true
}

// Index returns the position of the focused id in visible, or -1.
func (n *Navigator) Index(visible []string) int {
	if n.Focused == "" {
		return -1
	}
	return slices.Index(visible, n.Focused)
}

// EnsureVisible adjusts Offset so the focused row lies inside a window of
// maxVisible rows over total rows.
func (n *Navigator) EnsureVisible(cursor, total, maxVisible int) {
	if total == 0 || maxVisible <= 0 {
		n.Offset = 0
		return
	}
	maxOffset := max(total-maxVisible, 0)
	n.Offset = min(max(n.Offset, 0), maxOffset)
	if cursor < 0 {
		return
	}
	if cursor < n.Offset {
		n.Offset = cursor
	}
	if upper := n.Offset + maxVisible - 1; cursor > upper {
		n.Offset = min(max(cursor-maxVisible+1, 0), maxOffset)
	}
}

func pageSize(maxVisible, total int) int {
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	return max(size, 1)
}
