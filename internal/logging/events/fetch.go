package events

import (
	"time"

	"github.com/atomicstack/treecombo/internal/logging"
)

type FetchTracer struct{}

type SourceTracer struct{}

var (
	Fetch  = FetchTracer{}
	Source = SourceTracer{}
)

func (FetchTracer) Begin(key string, generation uint64) {
	logging.Trace("fetch.begin", map[string]any{"key": key, "generation": generation})
}

func (FetchTracer) Skip(key string) {
	logging.Trace("fetch.skip", map[string]any{"key": key})
}

func (FetchTracer) Done(key, outcome string, count int, elapsed time.Duration) {
	logging.Trace("fetch.done", map[string]any{
		"key":     key,
		"outcome": outcome,
		"count":   count,
		"elapsed": elapsed.String(),
	})
}

func (FetchTracer) Failed(key string, err error) {
	if err == nil {
		return
	}
	logging.Trace("fetch.error", map[string]any{"key": key, "error": err.Error()})
}

func (SourceTracer) Open(kind, path string) {
	logging.Trace("source.open", map[string]any{"kind": kind, "path": path})
}

func (SourceTracer) Changed(path string) {
	logging.Trace("source.change", map[string]any{"path": path})
}

func (SourceTracer) WatchError(err error) {
	if err == nil {
		return
	}
	logging.Trace("source.watch-error", map[string]any{"error": err.Error()})
}
