package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atomicstack/treecombo/internal/backend"
	"github.com/atomicstack/treecombo/internal/format/table"
	"github.com/atomicstack/treecombo/internal/logging"
	"github.com/atomicstack/treecombo/internal/logging/events"
	"github.com/atomicstack/treecombo/internal/source"
	"github.com/atomicstack/treecombo/internal/tree"
	"github.com/atomicstack/treecombo/internal/ui"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"github.com/xlab/treeprint"
)

const (
	watchSettle   = 250 * time.Millisecond
	watchInterval = time.Second
	walkLimit     = 8
)

// ErrCancelled is returned when the user leaves the picker without accepting.
var ErrCancelled = errors.New("selection cancelled")

// Output controls how accepted selections are written.
type Output struct {
	JSON      bool
	Labels    bool
	Clipboard bool
}

// Config describes user-provided application options.
type Config struct {
	Source     source.Options
	Search     string
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Watch      bool
	Dump       bool
	Depth      int
	Output     Output
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// Run opens the configured source and either runs the picker or, in dump
// mode, prints the tree.
func Run(cfg Config) error {
	src, err := source.Open(cfg.Source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	if cfg.Dump {
		return Dump(context.Background(), src, cfg.Depth, os.Stdout)
	}

	var watcher *backend.Watcher
	if cfg.Watch && src.Watchable() {
		watcher, err = backend.NewWatcher(src.Path, watchSettle, watchInterval)
		if err != nil {
			return fmt.Errorf("watch %s: %w", src.Path, err)
		}
		defer watcher.Stop()
	}
	model := ui.NewModel(ui.Options{
		Fetcher:    src,
		Matcher:    tree.MatcherFor(cfg.Search),
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Watcher:    watcher,
	})
	defer model.Close()
	// the picker draws on stderr so stdout carries only the result
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return ErrCancelled
		}
		return err
	}
	res := model.Result()
	if !res.Accepted {
		return ErrCancelled
	}
	return WriteResult(os.Stdout, res.Checked, cfg.Output)
}

type resultNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"`
}

// WriteResult prints the checked nodes: one id per line, an aligned id/label
// table, or a JSON array.
func WriteResult(w io.Writer, nodes []tree.Node, out Output) error {
	switch {
	case out.JSON:
		rows := make([]resultNode, len(nodes))
		for i, n := range nodes {
			rows[i] = resultNode{ID: n.ID, Label: n.Label, Parent: n.ParentID}
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	case out.Labels:
		rows := make([][]string, len(nodes))
		for i, n := range nodes {
			rows[i] = []string{n.ID, n.Label}
		}
		for _, line := range table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	default:
		for _, n := range nodes {
			if _, err := fmt.Fprintln(w, n.ID); err != nil {
				return err
			}
		}
	}
	if out.Clipboard && len(nodes) > 0 {
		ids := make([]string, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		if err := copyToClipboard(strings.Join(ids, "\n")); err != nil {
			// the result is already on stdout
			logging.Error(fmt.Errorf("copy to clipboard: %w", err))
			fmt.Fprintf(os.Stderr, "Warning: copy to clipboard: %v\n", err)
		}
	}
	return nil
}

// Dump walks the source depth levels deep and prints it as a tree.
func Dump(ctx context.Context, src *source.Source, depth int, w io.Writer) error {
	store, err := source.Walk(ctx, src, depth, walkLimit)
	if err != nil {
		return fmt.Errorf("walk %s source: %w", src.Kind, err)
	}
	events.App.Dump(src.Kind, depth, store.Len())
	_, err = io.WriteString(w, renderTree(store, rootTitle(src)).String())
	return err
}

func rootTitle(src *source.Source) string {
	if src.Path != "" {
		return src.Path
	}
	return src.Kind
}

func renderTree(store tree.Store, title string) treeprint.Tree {
	out := treeprint.New()
	out.SetValue(title)
	var add func(branch treeprint.Tree, key string)
	add = func(branch treeprint.Tree, key string) {
		children, _ := store.Children(key)
		for _, n := range children {
			text := fmt.Sprintf("%s [%s]", n.Label, n.ID)
			if nested, ok := store.Children(n.ID); ok && len(nested) > 0 {
				add(branch.AddBranch(text), n.ID)
				continue
			}
			if n.HasChildren {
				text += " …"
			}
			branch.AddNode(text)
		}
	}
	add(out, tree.RootKey)
	return out
}
