package ui

import (
	"testing"

	"github.com/atomicstack/treecombo/internal/tree"
)

func TestDownStopsAtLastEntry(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("down", "down")
	if h.Model().Focused() != "c" {
		t.Fatalf("expected focus on c, got %q", h.Model().Focused())
	}
	h.SendKeys("down")
	if h.Model().Focused() != "c" {
		t.Fatalf("expected focus to stay on c, got %q", h.Model().Focused())
	}
	h.SendKeys("home")
	if h.Model().Focused() != "a" {
		t.Fatalf("expected home to focus a, got %q", h.Model().Focused())
	}
	h.SendKeys("up")
	if h.Model().Focused() != "a" {
		t.Fatalf("expected up at the start to do nothing, got %q", h.Model().Focused())
	}
	h.SendKeys("end")
	if h.Model().Focused() != "c" {
		t.Fatalf("expected end to focus c, got %q", h.Model().Focused())
	}
}

func TestRightExpandsAndLeftCollapses(t *testing.T) {
	fake := newFakeTree()
	h := startHarness(t, fake, Options{})
	h.SendKeys("right")
	if got := visibleIDs(h); !equalIDs(got, "a", "a1", "a2", "b", "c") {
		t.Fatalf("expected a's children inserted after a, got %v", got)
	}
	h.SendKeys("left")
	if got := visibleIDs(h); !equalIDs(got, "a", "b", "c") {
		t.Fatalf("expected a collapsed, got %v", got)
	}
	if !h.Model().Snapshot().Store.Loaded("a") {
		t.Fatalf("collapsing must not unload children")
	}
	h.SendKeys("right")
	if fake.callsFor("a") != 1 {
		t.Fatalf("expected loaded children to be reused, got %d fetches", fake.callsFor("a"))
	}
}

func TestToggleParentPropagatesAndRoundTrips(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("right", "space")
	snap := h.Model().Snapshot()
	for _, id := range []string{"a", "a1", "a2"} {
		if snap.Selections.Get(id) != tree.Checked {
			t.Fatalf("expected %s checked, got %s", id, snap.Selections.Get(id))
		}
	}

	h.SendKeys("down", "space")
	if got := h.Model().Snapshot().Selections.Get("a"); got != tree.Indeterminate {
		t.Fatalf("expected a indeterminate, got %s", got)
	}
	h.SendKeys("space")
	if got := h.Model().Snapshot().Selections.Get("a"); got != tree.Checked {
		t.Fatalf("expected a checked again once every child is, got %s", got)
	}

	h.SendKeys("up", "space")
	snap = h.Model().Snapshot()
	for _, id := range []string{"a", "a1", "a2"} {
		if snap.Selections.Get(id) != tree.Unchecked {
			t.Fatalf("expected %s unchecked, got %s", id, snap.Selections.Get(id))
		}
	}
}

func TestExpandUnderCheckedParentInheritsSelection(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("down", "space", "right")
	snap := h.Model().Snapshot()
	if snap.Selections.Get("b1") != tree.Checked {
		t.Fatalf("expected b1 to inherit checked from b, got %s", snap.Selections.Get("b1"))
	}
}

func TestEscClearsFocusThenCancels(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("esc")
	if h.Model().Focused() != "" || h.Quit() {
		t.Fatalf("expected first esc to clear focus only")
	}
	h.SendKeys("down")
	if h.Model().Focused() != "a" {
		t.Fatalf("expected down to refocus the first entry, got %q", h.Model().Focused())
	}
	h.SendKeys("esc", "esc")
	if !h.Quit() || h.Model().Result().Accepted {
		t.Fatalf("expected second esc to cancel")
	}
}

func TestTabSwitchesBetweenQueryAndTree(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("tab")
	if h.Model().Focused() != "" {
		t.Fatalf("expected tab on a row to return to the query, got %q", h.Model().Focused())
	}
	snap := h.Model().Snapshot()
	if got := snap.Selections.Checked(snap.Store); len(got) != 0 {
		t.Fatalf("expected tab not to toggle selection, got %#v", got)
	}
	h.SendKeys("tab")
	if h.Model().Focused() != "a" {
		t.Fatalf("expected tab on the query to focus the first row, got %q", h.Model().Focused())
	}
}

func TestEnterWithoutFocusAccepts(t *testing.T) {
	h := startHarness(t, newFakeTree(), Options{})
	h.SendKeys("space", "esc", "enter")
	if !h.Quit() || !h.Model().Result().Accepted {
		t.Fatalf("expected enter on the query to accept")
	}
	if got := h.Model().Result().Checked; len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected a checked, got %#v", got)
	}
}

func TestPageDownMovesByViewport(t *testing.T) {
	fake := newFakeTree()
	fake.children[""] = numberedNodes(12)
	h := startHarness(t, fake, Options{Height: 6})
	// six rows less status and prompt leave four
	h.SendKeys("pgdown")
	if h.Model().Focused() != "n04" {
		t.Fatalf("expected page down to land on n04, got %q", h.Model().Focused())
	}
	h.SendKeys("pgdown", "pgdown", "pgdown")
	if h.Model().Focused() != "n11" {
		t.Fatalf("expected page down to stop at the last entry, got %q", h.Model().Focused())
	}
	h.SendKeys("pgup")
	if h.Model().Focused() != "n07" {
		t.Fatalf("expected page up to land on n07, got %q", h.Model().Focused())
	}
}
