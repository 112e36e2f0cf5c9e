// Package source provides the child-fetch collaborator used by the tree and
// the concrete backends it can read from.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/treecombo/internal/logging/events"
	"github.com/atomicstack/treecombo/internal/tree"
)

var (
	ErrUnknownSource = errors.New("unknown source")
	ErrNotFound      = errors.New("node not found")
)

// Fetcher returns the ordered children of parentID. An empty parentID asks
// for the top-level nodes.
type Fetcher interface {
	FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, parentID string) ([]tree.Node, error)

func (f FetcherFunc) FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error) {
	return f(ctx, parentID)
}

const (
	KindRandom = "random"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// Options selects and tunes a source.
type Options struct {
	Kind     string
	Path     string
	Delay    time.Duration
	Fanout   int
	Seed     int64
	Interval time.Duration
}

// Source is an opened Fetcher plus its release hook.
type Source struct {
	Fetcher
	Kind  string
	Path  string
	close func() error
}

// Close releases resources held by the source.
func (s *Source) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Watchable reports whether the source is backed by a file worth watching.
func (s *Source) Watchable() bool {
	return s.Kind == KindFile || s.Kind == KindSQLite
}

// Open builds the fetcher named by opts.Kind, wrapped so concurrent requests
// for the same parent share a call and calls are spaced by opts.Interval.
func Open(opts Options) (*Source, error) {
	var (
		base    Fetcher
		closeFn func() error
	)
	switch opts.Kind {
	case KindRandom, "":
		base = NewRandom(opts.Delay, opts.Fanout, opts.Seed)
		opts.Kind = KindRandom
	case KindFile:
		f, err := NewFile(opts.Path)
		if err != nil {
			return nil, err
		}
		base = f
	case KindSQLite:
		db, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		base = db
		closeFn = db.Close
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, opts.Kind)
	}
	events.Source.Open(opts.Kind, opts.Path)
	return &Source{
		Fetcher: NewDedupe(NewThrottled(base, opts.Interval)),
		Kind:    opts.Kind,
		Path:    opts.Path,
		close:   closeFn,
	}, nil
}
