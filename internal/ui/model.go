package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/treecombo/internal/backend"
	"github.com/atomicstack/treecombo/internal/data/dispatcher"
	"github.com/atomicstack/treecombo/internal/source"
	"github.com/atomicstack/treecombo/internal/state"
	"github.com/atomicstack/treecombo/internal/theme"
	"github.com/atomicstack/treecombo/internal/tree"
	"github.com/atomicstack/treecombo/internal/ui/command"
	uistate "github.com/atomicstack/treecombo/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	Fetcher    source.Fetcher
	Matcher    tree.Matcher
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Watcher    *backend.Watcher
}

// Result is what the user decided when the program ended.
type Result struct {
	Accepted bool
	Checked  []tree.Node
}

// Model implements the Bubble Tea model for the tree picker.
type Model struct {
	tree  state.TreeStore
	nav   uistate.Navigator
	query uistate.Query
	match tree.Matcher

	ctx    context.Context
	cancel context.CancelFunc
	bus    *command.Bus

	spinner  spinner.Model
	spinning bool

	caret      cursor.Model
	caretDirty bool

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	errMsg     string
	infoMsg    string
	infoExpire time.Time

	backend    *backend.Watcher
	dispatcher *dispatcher.Dispatcher

	result   Result
	closed   bool
	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the UI with an empty tree; Init requests the root.
func NewModel(opts Options) *Model {
	store := state.NewTreeStore()
	ctx, cancel := context.WithCancel(context.Background())
	match := opts.Matcher
	if match == nil {
		match = tree.SubstringMatcher
	}
	m := &Model{
		tree:       store,
		match:      match,
		ctx:        ctx,
		cancel:     cancel,
		bus:        command.New(ctx, opts.Fetcher),
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
		backend:    opts.Watcher,
		dispatcher: dispatcher.New(store),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	// loading rows carry the style; the spinner frame stays plain
	m.spinner = spinner.New(spinner.WithSpinner(spinner.MiniDot))
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = *styles.Cursor
	}
	c.SetChar(" ")
	m.caret = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadChildren(tree.RootKey)}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.caret.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):          m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):   m.handleWindowSizeMsg,
		reflect.TypeOf(command.FetchResult{}): m.handleFetchResult,
		reflect.TypeOf(spinner.TickMsg{}):     m.handleSpinnerTick,
		reflect.TypeOf(cursor.BlinkMsg{}):     m.handleCaretBlink,
		reflect.TypeOf(backendEventMsg{}):     m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):      m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// finishUpdate restarts the caret blink after the query or focus changed so
// the caret stays solid while the user is typing.
func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.caretDirty && !m.closed {
		m.caretDirty = false
		m.caret.Blink = false
		if cmd := m.caret.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Result reports the outcome once the program has quit.
func (m *Model) Result() Result {
	return m.result
}

// Snapshot exposes the current tree state.
func (m *Model) Snapshot() state.Snapshot {
	return m.tree.Snapshot()
}

// Focused returns the focused node id, or "" when the query has focus.
func (m *Model) Focused() string {
	return m.nav.Focused
}

// Query returns the current search text.
func (m *Model) Query() string {
	return m.query.Text
}

// Close cancels outstanding fetches and discards their results.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	m.tree.Close()
}

// visible computes the rows currently shown, in order.
func (m *Model) visible() []string {
	snap := m.tree.Snapshot()
	return tree.Visible(snap.Store, snap.Expanded, m.query.Text, m.match)
}

func (m *Model) isExpanded(id string) bool {
	return m.tree.Snapshot().Expanded.Has(id)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport(m.visible())
	return nil
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}
