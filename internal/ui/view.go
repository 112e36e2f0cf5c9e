package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/treecombo/internal/state"
	"github.com/atomicstack/treecombo/internal/tree"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	maxTags      = 3
	indentWidth  = 2
	footerText   = "↑/↓ move  →/← expand/collapse  space toggle  ctrl+d accept  ctrl+r retry  esc clear  ctrl+c quit"
	retryHint    = "(ctrl+r to retry)"
	rootLoading  = "Loading nodes…"
	branchLoaded = "Loading…"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.tree.Snapshot()
	visible := tree.Visible(snap.Store, snap.Expanded, m.query.Text, m.match)
	m.syncViewport(visible)

	lines := make([]styledLine, 0, 16)
	if tags := m.tagsLine(snap); tags.text != "" {
		lines = append(lines, tags)
	}
	lines = append(lines, m.treeLines(snap, visible)...)
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: footerText, style: styles.Footer})
	}
	// bottom bar: status line + prompt
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	var status styledLine
	if m.errMsg != "" {
		status = styledLine{text: fmt.Sprintf("Error: %s %s", m.errMsg, retryHint), style: styles.Error}
	} else if m.verbose {
		status = styledLine{text: m.statusText(snap, visible), style: styles.Info}
	}
	out := renderLines(append(lines, applyWidth([]styledLine{status}, m.width)...))
	prompt := m.queryPrompt()
	if m.width > 0 && lipgloss.Width(prompt) > m.width {
		prompt = truncate.StringWithTail(prompt, uint(m.width-1), "…")
	}
	return out + "\n" + prompt
}

// tagsLine lists the checked nodes in tree order, collapsing the tail into
// a "+N more" marker.
func (m *Model) tagsLine(snap state.Snapshot) styledLine {
	checked := snap.Selections.Checked(snap.Store)
	if len(checked) == 0 {
		return styledLine{}
	}
	shown := checked
	if len(shown) > maxTags {
		shown = shown[:maxTags]
	}
	tags := make([]string, len(shown))
	for i, n := range shown {
		tags[i] = "[" + n.Label + "]"
	}
	text := strings.Join(tags, " ")
	extra := len(checked) - len(shown)
	if extra == 0 {
		return styledLine{text: text, style: styles.Tag}
	}
	return styledLine{
		text:          text + fmt.Sprintf(" +%d more", extra),
		style:         styles.TagOverflow,
		prefixStyle:   styles.Tag,
		highlightFrom: len([]rune(text)),
	}
}

func (m *Model) treeLines(snap state.Snapshot, visible []string) []styledLine {
	if len(visible) == 0 {
		switch {
		case snap.IsLoading(tree.RootKey):
			return []styledLine{{text: m.spinner.View() + " " + rootLoading, style: styles.Loading}}
		case m.query.Text != "":
			return []styledLine{{text: fmt.Sprintf("No matches for %q", m.query.Text), style: styles.Info}}
		case snap.Store.Loaded(tree.RootKey):
			return []styledLine{{text: "(no nodes)", style: styles.Info}}
		}
		return nil
	}
	start, end := 0, len(visible)
	if maxItems := m.maxVisibleItems(); maxItems > 0 && len(visible) > maxItems {
		start = min(max(m.nav.Offset, 0), len(visible)-maxItems)
		end = start + maxItems
	}
	lines := make([]styledLine, 0, end-start)
	for _, id := range visible[start:end] {
		n, ok := snap.Store.Node(id)
		if !ok {
			continue
		}
		depth := snap.Store.Depth(id)
		lines = append(lines, m.nodeLine(n, depth, snap))
		if !snap.Expanded.Has(id) {
			continue
		}
		pad := strings.Repeat(" ", (depth+1)*indentWidth+2)
		if snap.IsLoading(id) {
			lines = append(lines, styledLine{text: pad + m.spinner.View() + " " + branchLoaded, style: styles.Loading})
		} else if failure, failed := snap.FailureFor(id); failed {
			lines = append(lines, styledLine{text: pad + "failed: " + failure.Err.Error() + " " + retryHint, style: styles.Error})
		}
	}
	return lines
}

// nodeLine renders one row: indent, expander, checkbox and label. The
// checkbox segment carries its own style.
func (m *Model) nodeLine(n tree.Node, depth int, snap state.Snapshot) styledLine {
	expander := " "
	if n.HasChildren {
		expander = "+"
		if snap.Expanded.Has(n.ID) {
			expander = "-"
		}
	}
	selection := snap.Selections.Get(n.ID)
	prefix := strings.Repeat(" ", depth*indentWidth) + expander + " " + checkbox(selection)
	line := styledLine{
		text:          prefix + " " + n.Label,
		style:         styles.Item,
		prefixStyle:   checkboxStyle(selection),
		highlightFrom: len([]rune(prefix)),
	}
	if n.ID == m.nav.Focused {
		line.style = styles.FocusedItem
		line.prefixStyle = styles.FocusedItem
		if m.width > 0 {
			if gap := m.width - runewidth.StringWidth(line.text); gap > 0 {
				line.text += strings.Repeat(" ", gap)
			}
		}
	}
	return line
}

func checkbox(s tree.Selection) string {
	switch s {
	case tree.Checked:
		return "[x]"
	case tree.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

func checkboxStyle(s tree.Selection) *lipgloss.Style {
	switch s {
	case tree.Checked:
		return styles.CheckboxOn
	case tree.Indeterminate:
		return styles.CheckboxMixed
	default:
		return styles.Checkbox
	}
}

func (m *Model) statusText(snap state.Snapshot, visible []string) string {
	return fmt.Sprintf("%d shown  %d loaded  %d checked  %d loading",
		len(visible), snap.Store.Len(), len(snap.Selections.Checked(snap.Store)), len(snap.Loading))
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // status + prompt
	snap := m.tree.Snapshot()
	if len(snap.Selections.Checked(snap.Store)) > 0 {
		used++
	}
	if m.infoMsg != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	return max(m.height-used, 1)
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText cuts text to width display columns, ending in an ellipsis.
func truncateText(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return runewidth.Truncate(text, 1, "")
	}
	return runewidth.Truncate(text, width, "…")
}
