// Package browse is the interactive explorer: a bubbletea tree over an
// explorer.Provider with refresh, source view and export hand-off.
package browse

import (
	"context"
	"maps"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/xonecas/jpx/internal/explorer"
	"github.com/xonecas/jpx/internal/highlight"
	"github.com/xonecas/jpx/internal/jdtls"
)

// Action is what the browser asks the caller to do after it exits.
type Action int

const (
	ActionQuit Action = iota
	ActionExport
)

// Result is returned when the browser exits. Target is the workspace node
// an export was started from, nil when none is selected.
type Result struct {
	Action Action
	Target *jdtls.NodeData
}

// ClassReader fetches decompiled or attached source for non-file URIs.
type ClassReader interface {
	ClassFileContents(ctx context.Context, uri string) (string, error)
}

// Options configures a browser. Reader is optional.
type Options struct {
	Provider *explorer.Provider
	Reader   ClassReader
	Theme    string
	Palette  highlight.Palette
	// Status is shown in the header until the first key press.
	Status string
}

type keyMap struct {
	Quit       key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Expand     key.Binding
	Collapse   key.Binding
	Toggle     key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding
	Export     key.Binding
	Open       key.Binding
	Back       key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:         key.NewBinding(key.WithKeys("up", "k")),
	Down:       key.NewBinding(key.WithKeys("down", "j")),
	PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d")),
	Expand:     key.NewBinding(key.WithKeys("right", "l", "enter"), key.WithHelp("→", "expand")),
	Collapse:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "collapse")),
	Toggle:     key.NewBinding(key.WithKeys("space")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	RefreshAll: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh all")),
	Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export jar")),
	Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	Back:       key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
}

// row is one visible line of the tree.
type row struct {
	node  *explorer.Node
	item  explorer.TreeItem
	depth int
}

type styles struct {
	title  lipgloss.Style
	icon   lipgloss.Style
	desc   lipgloss.Style
	sel    lipgloss.Style
	status lipgloss.Style
	err    lipgloss.Style
}

func newStyles(p highlight.Palette) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent)),
		icon:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		desc:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)),
		sel:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Fg)).Background(lipgloss.Color(p.SelBg)),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
	}
}

// rowsMsg carries a freshly flattened tree. Only the latest generation is
// applied.
type rowsMsg struct {
	gen  int
	rows []row
	err  error
}

// changedMsg is sent when the provider reports a change.
type changedMsg struct{}

// Model is the browser state.
type Model struct {
	ctx     context.Context
	opts    Options
	styles  styles
	spinner spinner.Model

	width  int
	height int

	rows     []row
	expanded map[string]bool
	sel      int
	top      int
	selID    string
	gen      int
	loading  bool
	err      error
	status   string

	source *sourceView
	result Result
}

// New returns a browser over opts.Provider. ctx bounds every server call.
func New(ctx context.Context, opts Options) *Model {
	st := newStyles(opts.Palette)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.icon
	return &Model{
		ctx:      ctx,
		opts:     opts,
		styles:   st,
		spinner:  s,
		width:    80,
		height:   24,
		expanded: make(map[string]bool),
		status:   opts.Status,
	}
}

// Result returns what the user asked for on exit.
func (m *Model) Result() Result { return m.result }

func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// fetch flattens the tree off the update loop.
func (m *Model) fetch() tea.Cmd {
	m.gen++
	gen, ctx, p := m.gen, m.ctx, m.opts.Provider
	expanded := maps.Clone(m.expanded)
	return func() tea.Msg {
		rows, err := flatten(ctx, p, expanded)
		return rowsMsg{gen: gen, rows: rows, err: err}
	}
}

func flatten(ctx context.Context, p *explorer.Provider, expanded map[string]bool) ([]row, error) {
	roots, err := p.Children(ctx, nil)
	if err != nil {
		return nil, err
	}
	var rows []row
	var walk func(nodes []*explorer.Node, depth int) error
	walk = func(nodes []*explorer.Node, depth int) error {
		for _, n := range nodes {
			it := p.TreeItem(n)
			rows = append(rows, row{node: n, item: it, depth: depth})
			if !it.Collapsible || !expanded[n.ID()] {
				continue
			}
			children, err := p.Children(ctx, n)
			if err != nil {
				return err
			}
			if err := walk(children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return rows, walk(roots, 0)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clamp()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case rowsMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
			m.reselect()
		}
		return m, nil

	case changedMsg:
		return m, m.load()

	case sourceMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.source = newSourceView(msg)
		m.source.scroll(0, m.pageSize())
		return m, nil

	case closeSourceMsg:
		m.source = nil
		return m, nil

	case tea.KeyPressMsg:
		if m.source != nil {
			return m, m.source.handleKey(msg, m.pageSize())
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	m.status = ""
	switch {
	case key.Matches(msg, keys.Quit):
		m.result = Result{Action: ActionQuit}
		return tea.Quit
	case key.Matches(msg, keys.Up):
		m.move(-1)
	case key.Matches(msg, keys.Down):
		m.move(1)
	case key.Matches(msg, keys.PageUp):
		m.move(-m.pageSize())
	case key.Matches(msg, keys.PageDown):
		m.move(m.pageSize())
	case key.Matches(msg, keys.Expand):
		r, ok := m.current()
		if !ok {
			return nil
		}
		if !r.item.Collapsible {
			if msg.Keystroke() == "enter" {
				return m.open(r)
			}
			return nil
		}
		if m.expanded[r.node.ID()] {
			return nil
		}
		m.expanded[r.node.ID()] = true
		return m.load()
	case key.Matches(msg, keys.Collapse):
		m.collapse()
	case key.Matches(msg, keys.Toggle):
		r, ok := m.current()
		if !ok || !r.item.Collapsible {
			return nil
		}
		m.expanded[r.node.ID()] = !m.expanded[r.node.ID()]
		return m.load()
	case key.Matches(msg, keys.Refresh):
		r, ok := m.current()
		if !ok {
			return nil
		}
		m.status = "refreshing " + r.item.Label
		return m.refresh(r.node)
	case key.Matches(msg, keys.RefreshAll):
		m.status = "refreshing workspace"
		return m.refresh(nil)
	case key.Matches(msg, keys.Export):
		m.result = Result{Action: ActionExport, Target: m.exportTarget()}
		return tea.Quit
	case key.Matches(msg, keys.Open):
		r, ok := m.current()
		if !ok {
			return nil
		}
		return m.open(r)
	}
	return nil
}

// refresh invalidates node (nil for the whole tree) immediately and reloads.
// It runs off the update loop because provider listeners may send messages
// back into the program.
func (m *Model) refresh(node *explorer.Node) tea.Cmd {
	m.loading = true
	p := m.opts.Provider
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		p.Refresh(false, node)
		return changedMsg{}
	})
}

// collapse folds the selected node, or moves to its parent when it is
// already folded.
func (m *Model) collapse() {
	r, ok := m.current()
	if !ok {
		return
	}
	if m.expanded[r.node.ID()] {
		delete(m.expanded, r.node.ID())
		for i := m.sel + 1; i < len(m.rows) && m.rows[i].depth > r.depth; {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
		}
		return
	}
	for i := m.sel - 1; i >= 0; i-- {
		if m.rows[i].depth < r.depth {
			m.setSel(i)
			return
		}
	}
}

// exportTarget returns the workspace node at or above the selection.
func (m *Model) exportTarget() *jdtls.NodeData {
	r, ok := m.current()
	if !ok {
		return nil
	}
	for n := r.node; n != nil; n = n.Parent() {
		if n.Kind() == explorer.KindWorkspace {
			d := n.Data()
			return &d
		}
	}
	return nil
}

func (m *Model) current() (row, bool) {
	if m.sel < 0 || m.sel >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.sel], true
}

func (m *Model) move(delta int) {
	m.setSel(m.sel + delta)
}

func (m *Model) setSel(i int) {
	m.sel = i
	m.clamp()
	if r, ok := m.current(); ok {
		m.selID = r.node.ID()
	}
}

// reselect keeps the selection on the same node across reloads.
func (m *Model) reselect() {
	for i, r := range m.rows {
		if r.node.ID() == m.selID {
			m.sel = i
			m.clamp()
			return
		}
	}
	m.setSel(m.sel)
}

func (m *Model) clamp() {
	if m.sel >= len(m.rows) {
		m.sel = len(m.rows) - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
	page := m.pageSize()
	if m.sel < m.top {
		m.top = m.sel
	}
	if m.sel >= m.top+page {
		m.top = m.sel - page + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// pageSize is the number of tree rows that fit between header and footer.
func (m *Model) pageSize() int {
	if h := m.height - 2; h > 1 {
		return h
	}
	return 1
}
