package events

import "github.com/atomicstack/treecombo/internal/logging"

type TreeTracer struct{}

type FilterTracer struct{}

type FocusTracer struct{}

type CommandTracer struct{}

var (
	Tree    = TreeTracer{}
	Filter  = FilterTracer{}
	Focus   = FocusTracer{}
	Command = CommandTracer{}
)

func (TreeTracer) Expand(id string) {
	logging.Trace("tree.expand", map[string]any{"id": id})
}

func (TreeTracer) Collapse(id string) {
	logging.Trace("tree.collapse", map[string]any{"id": id})
}

func (TreeTracer) Toggle(id, state string) {
	logging.Trace("tree.toggle", map[string]any{"id": id, "state": state})
}

func (TreeTracer) Reload(reason string) {
	logging.Trace("tree.reload", map[string]any{"reason": reason})
}

func (FilterTracer) Changed(query string, visible int) {
	logging.Trace("filter.change", map[string]any{"query": query, "visible": visible})
}

func (FilterTracer) Cleared() {
	logging.Trace("filter.clear", nil)
}

func (FilterTracer) Cursor(pos int) {
	logging.Trace("filter.cursor", map[string]any{"cursor": pos})
}

func (FocusTracer) Move(id string) {
	logging.Trace("focus.move", map[string]any{"id": id})
}

func (FocusTracer) Clear() {
	logging.Trace("focus.clear", nil)
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]any{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]any{"id": id, "label": label, "msg": msgType})
}
