// Package picker is a filterable single or multi select list for the
// terminal, with an optional Back row.
package picker

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/jpx/internal/highlight"
)

// Action is the result of handling a message. nil means no action.
type Action any

// ActionClose signals the picker was dismissed.
type ActionClose struct{}

// ActionBack signals the Back row was chosen.
type ActionBack struct{}

// ActionAccept carries the chosen items: the highlighted one in single mode,
// every checked one in multi mode.
type ActionAccept struct{ Items []Item }

// Item is a single entry in the list.
type Item struct {
	Label  string
	Desc   string
	Value  string
	Picked bool
}

// Colors holds the theme colors for the picker.
type Colors struct {
	Fg     string
	Bg     string
	Dim    string
	SelFg  string
	SelBg  string
	Border string
	Accent string
}

// ColorsFromPalette maps a theme palette onto picker colors.
func ColorsFromPalette(p highlight.Palette) Colors {
	return Colors{
		Fg:     p.Fg,
		Bg:     p.Bg,
		Dim:    p.Dim,
		SelFg:  p.Fg,
		SelBg:  p.SelBg,
		Border: p.Border,
		Accent: p.Accent,
	}
}

// Options configures a picker.
type Options struct {
	Title       string
	Placeholder string
	Multi       bool
	Back        bool
	Colors      Colors
}

const (
	debounceDelay = 150 * time.Millisecond
	backLabel     = "← Back"
	backRow       = -1
)

type keyMap struct {
	Close  key.Binding
	Accept key.Binding
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
}

var keys = keyMap{
	Close:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "dismiss")),
	Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "accept")),
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n")),
	Toggle: key.NewBinding(key.WithKeys("space", "tab"), key.WithHelp("space", "toggle")),
}

// debounceMsg is sent after the filter debounce timer fires.
type debounceMsg struct{ seq int }

// Model is a filter input over a list of items.
type Model struct {
	input  []rune
	cursor int

	items   []Item
	checked []bool
	rows    []int // indexes into items, backRow for the Back row
	sel     int
	inList  bool // true = list focused, false = input focused

	seq  int
	opts Options
}

// New creates a picker over items. Items flagged Picked start checked in
// multi mode.
func New(items []Item, opts Options) Model {
	m := Model{items: items, checked: make([]bool, len(items)), opts: opts}
	for i, it := range items {
		m.checked[i] = opts.Multi && it.Picked
	}
	m.filter()
	return m
}

// DebounceCmd returns a tea.Cmd that fires after the debounce delay.
func (m *Model) DebounceCmd() tea.Cmd {
	seq := m.seq
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// HandleMsg processes a tea.Msg and returns an optional Action and a
// tea.Cmd the caller must dispatch.
func (m *Model) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case debounceMsg:
		if msg.seq == m.seq {
			m.filter()
			m.inList = false
		}
	}
	return nil, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (Action, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Close):
		return ActionClose{}, nil
	case key.Matches(msg, keys.Accept):
		return m.accept(), nil
	case key.Matches(msg, keys.Up):
		m.up()
		return nil, nil
	case key.Matches(msg, keys.Down):
		m.down()
		return nil, nil
	case m.inList && key.Matches(msg, keys.Toggle):
		m.toggle()
		return nil, nil
	}

	switch msg.Keystroke() {
	case "backspace":
		if m.cursor > 0 {
			m.input = append(m.input[:m.cursor-1], m.input[m.cursor:]...)
			m.cursor--
			m.seq++
			return nil, m.DebounceCmd()
		}
		return nil, nil
	case "ctrl+u":
		m.input = m.input[m.cursor:]
		m.cursor = 0
		m.seq++
		return nil, m.DebounceCmd()
	case "left":
		if !m.inList && m.cursor > 0 {
			m.cursor--
		}
		return nil, nil
	case "right":
		if !m.inList && m.cursor < len(m.input) {
			m.cursor++
		}
		return nil, nil
	}

	if !m.inList && msg.Text != "" {
		for _, r := range msg.Text {
			m.input = append(m.input[:m.cursor], append([]rune{r}, m.input[m.cursor:]...)...)
			m.cursor++
		}
		m.seq++
		return nil, m.DebounceCmd()
	}
	return nil, nil
}

func (m *Model) accept() Action {
	idx := m.current()
	if m.inList && idx == backRow {
		return ActionBack{}
	}
	if m.opts.Multi {
		var out []Item
		for i, it := range m.items {
			if m.checked[i] {
				out = append(out, it)
			}
		}
		return ActionAccept{Items: out}
	}
	if !m.inList {
		idx = m.firstItem()
	}
	if idx < 0 {
		return nil
	}
	return ActionAccept{Items: []Item{m.items[idx]}}
}

func (m *Model) toggle() {
	if !m.opts.Multi {
		return
	}
	if idx := m.current(); idx >= 0 {
		m.checked[idx] = !m.checked[idx]
	}
}

func (m *Model) up() {
	if !m.inList {
		return
	}
	if m.sel > 0 {
		m.sel--
	} else {
		m.inList = false
	}
}

func (m *Model) down() {
	if !m.inList {
		if len(m.rows) > 0 {
			m.inList = true
		}
		return
	}
	if m.sel < len(m.rows)-1 {
		m.sel++
	}
}

// current returns the item index under the selection, backRow for the Back
// row, or -2 when the list is empty.
func (m *Model) current() int {
	if len(m.rows) == 0 {
		return -2
	}
	if m.sel >= len(m.rows) {
		m.sel = 0
	}
	return m.rows[m.sel]
}

func (m *Model) firstItem() int {
	for _, r := range m.rows {
		if r != backRow {
			return r
		}
	}
	return -2
}

// filter rebuilds the visible rows from the input and moves the selection
// to the first item. The Back row survives every filter.
func (m *Model) filter() {
	m.rows = m.rows[:0]
	if m.opts.Back {
		m.rows = append(m.rows, backRow)
	}
	q := strings.ToLower(strings.TrimSpace(string(m.input)))
	for i, it := range m.items {
		if q == "" || strings.Contains(strings.ToLower(it.Label+" "+it.Desc), q) {
			m.rows = append(m.rows, i)
		}
	}
	m.sel = 0
	if len(m.rows) > 1 && m.rows[0] == backRow {
		m.sel = 1
	}
}

// View renders the picker as a box of the given width and list height.
func (m *Model) View(width, height int) string {
	if width < 30 {
		width = 30
	}
	innerW := width - 4 // border + padding
	listHeight := height - 6
	if listHeight < 1 {
		listHeight = 1
	}

	c := m.opts.Colors
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Dim))
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Accent)).Render(m.opts.Title)

	lines := []string{title, m.renderInput(), dim.Render(strings.Repeat("─", innerW))}
	lines = append(lines, m.renderList(innerW, listHeight)...)
	lines = append(lines, dim.Render(m.help()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c.Border)).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) help() string {
	bindings := []key.Binding{keys.Accept, keys.Close}
	if m.opts.Multi {
		bindings = append(bindings, keys.Toggle)
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

func (m *Model) renderInput() string {
	prompt := "> "
	if len(m.input) == 0 && m.opts.Placeholder != "" {
		ph := lipgloss.NewStyle().Foreground(lipgloss.Color(m.opts.Colors.Dim)).Render(m.opts.Placeholder)
		return prompt + ph
	}
	if m.inList {
		return prompt + string(m.input)
	}
	before := string(m.input[:m.cursor])
	cursorChar, after := " ", ""
	if m.cursor < len(m.input) {
		cursorChar = string(m.input[m.cursor])
		after = string(m.input[m.cursor+1:])
	}
	return prompt + before + lipgloss.NewStyle().Reverse(true).Render(cursorChar) + after
}

func (m *Model) renderList(innerW, listHeight int) []string {
	scrollOff := 0
	if m.sel >= listHeight {
		scrollOff = m.sel - listHeight + 1
	}

	c := m.opts.Colors
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Dim))
	selStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.SelFg)).
		Background(lipgloss.Color(c.SelBg))

	var lines []string
	for i := scrollOff; i < len(m.rows) && len(lines) < listHeight; i++ {
		label, desc := m.rowText(m.rows[i])
		line := ansi.Truncate(label, innerW, "…")
		if i == m.sel && m.inList {
			lines = append(lines, selStyle.Render(padRight(line, innerW)))
			continue
		}
		if desc != "" {
			line = ansi.Truncate(line+dim.Render("  "+desc), innerW, "…")
		}
		lines = append(lines, line)
	}
	for len(lines) < listHeight {
		lines = append(lines, "")
	}
	return lines
}

func (m *Model) rowText(idx int) (string, string) {
	if idx == backRow {
		return backLabel, ""
	}
	it := m.items[idx]
	label := it.Label
	if m.opts.Multi {
		box := "[ ] "
		if m.checked[idx] {
			box = "[x] "
		}
		label = box + label
	}
	return label, it.Desc
}

func padRight(s string, w int) string {
	if n := ansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
