package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/treecombo/internal/tree"
)

// fileNode is one entry of a tree file. HasChildren defaults to whether
// children are listed.
type fileNode struct {
	ID          string     `yaml:"id" json:"id"`
	Label       string     `yaml:"label" json:"label"`
	HasChildren *bool      `yaml:"has_children" json:"has_children"`
	Children    []fileNode `yaml:"children" json:"children"`
}

// File serves a nested YAML or JSON tree file. The file is parsed again when
// its modification time or size changes.
type File struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	index   map[string][]tree.Node
}

// NewFile opens and parses path.
func NewFile(path string) (*File, error) {
	f := &File{path: path}
	if _, err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	index, err := f.load()
	if err != nil {
		return nil, err
	}
	children, ok := index[tree.KeyFor(parentID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	return tree.CloneNodes(children), nil
}

func (f *File) load() (map[string][]tree.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("stat tree file: %w", err)
	}
	if f.index != nil && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return f.index, nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read tree file: %w", err)
	}
	roots, err := decodeTree(f.path, data)
	if err != nil {
		return nil, err
	}
	index := map[string][]tree.Node{}
	if err := indexNodes(index, "", roots, map[string]struct{}{}); err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	f.index, f.modTime, f.size = index, info.ModTime(), info.Size()
	return index, nil
}

func decodeTree(path string, data []byte) ([]fileNode, error) {
	var roots []fileNode
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &roots); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &roots); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return roots, nil
}

func indexNodes(index map[string][]tree.Node, parentID string, entries []fileNode, seen map[string]struct{}) error {
	nodes := make([]tree.Node, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("node under %q has no id", tree.KeyFor(parentID))
		}
		if entry.ID == tree.RootKey {
			return fmt.Errorf("node id %q is reserved", tree.RootKey)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("duplicate node id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
		label := entry.Label
		if label == "" {
			label = entry.ID
		}
		hasChildren := len(entry.Children) > 0
		if entry.HasChildren != nil {
			hasChildren = *entry.HasChildren
		}
		nodes = append(nodes, tree.Node{ID: entry.ID, Label: label, HasChildren: hasChildren, ParentID: parentID})
		if err := indexNodes(index, entry.ID, entry.Children, seen); err != nil {
			return err
		}
	}
	index[tree.KeyFor(parentID)] = nodes
	return nil
}
