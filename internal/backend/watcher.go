package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind represents the type of event emitted by the watcher.
type Kind int

const (
	KindSourceChanged Kind = iota
	KindSourceRemoved
	KindWatchError
)

func (k Kind) String() string {
	switch k {
	case KindSourceChanged:
		return "changed"
	case KindSourceRemoved:
		return "removed"
	default:
		return "error"
	}
}

// Event reports a change to the watched source file.
type Event struct {
	Kind Kind
	Path string
	Err  error
}

// ErrSourceRemoved is carried by KindSourceRemoved events.
var ErrSourceRemoved = errors.New("watched source was removed")

// Watcher follows a source file and publishes coalesced change events.
type Watcher struct {
	path     string
	settle   time.Duration
	throttle *Throttle
	fs       *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher watches path. Bursts of writes within settle are reported once,
// and events are never emitted more often than interval.
func NewWatcher(path string, settle, interval time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// the directory survives editors that replace the file on save
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		settle:   settle,
		throttle: NewThrottle(interval),
		fs:       fsw,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.wg.Add(1)
	go w.run()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w, nil
}

// Events returns a channel of watcher events. It is closed after Stop once
// the loop has exited.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Stop cancels the watcher.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the loop has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer w.fs.Close()

	target := filepath.Base(w.path)
	var settle <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return
		case evt, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(evt.Name) != target {
				continue
			}
			if evt.Has(fsnotify.Remove) {
				if !w.emit(Event{Kind: KindSourceRemoved, Path: w.path, Err: ErrSourceRemoved}) {
					return
				}
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			settle = timer.C
		case <-settle:
			settle = nil
			if err := w.throttle.Wait(w.ctx); err != nil {
				return
			}
			if !w.emit(Event{Kind: KindSourceChanged, Path: w.path}) {
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if !w.emit(Event{Kind: KindWatchError, Path: w.path, Err: err}) {
				return
			}
		}
	}
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
