package events

import "github.com/atomicstack/treecombo/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]any) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Accept(checked int) {
	logging.Trace("app.accept", map[string]any{"checked": checked})
}

func (AppTracer) Cancel() {
	logging.Trace("app.cancel", nil)
}

func (AppTracer) Dump(source string, depth, nodes int) {
	logging.Trace("app.dump", map[string]any{"source": source, "depth": depth, "nodes": nodes})
}
