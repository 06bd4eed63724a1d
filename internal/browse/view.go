package browse

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

const emptyHint = "No Java projects found. Open a folder with a pom.xml, build.gradle or .project file."

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	if m.source != nil {
		return m.renderSource()
	}
	lines := []string{m.header()}
	page := m.pageSize()
	switch {
	case len(m.rows) == 0 && !m.loading:
		lines = append(lines, m.styles.desc.Render(ansi.Truncate(emptyHint, m.width, "…")))
	default:
		for i := m.top; i < len(m.rows) && i < m.top+page; i++ {
			lines = append(lines, m.renderRow(i))
		}
	}
	for len(lines) < page+1 {
		lines = append(lines, "")
	}
	lines = append(lines, m.footer())
	return strings.Join(lines, "\n")
}

func (m *Model) header() string {
	h := m.styles.title.Render("Java Projects")
	if m.loading {
		h += " " + strings.TrimSpace(m.spinner.View())
	}
	if m.status != "" {
		h += "  " + m.styles.status.Render(m.status)
	}
	if m.err != nil {
		h += "  " + m.styles.err.Render(m.err.Error())
	}
	return ansi.Truncate(h, m.width, "…")
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]
	marker := "  "
	if r.item.Collapsible {
		marker = "▸ "
		if m.expanded[r.node.ID()] {
			marker = "▾ "
		}
	}
	prefix := strings.Repeat("  ", r.depth) + marker
	if i == m.sel {
		line := prefix + r.item.Icon + " " + r.item.Label
		if r.item.Description != "" {
			line += "  " + r.item.Description
		}
		line = ansi.Truncate(line, m.width, "…")
		if w := ansi.StringWidth(line); w < m.width {
			line += strings.Repeat(" ", m.width-w)
		}
		return m.styles.sel.Render(line)
	}
	line := prefix + m.styles.icon.Render(r.item.Icon) + " " + r.item.Label
	if r.item.Description != "" {
		line += "  " + m.styles.desc.Render(r.item.Description)
	}
	return ansi.Truncate(line, m.width, "…")
}

func (m *Model) footer() string {
	bindings := []key.Binding{keys.Expand, keys.Collapse, keys.Open, keys.Refresh, keys.RefreshAll, keys.Export, keys.Quit}
	return m.styles.status.Render(ansi.Truncate(helpLine(bindings), m.width, "…"))
}

func (m *Model) renderSource() string {
	s := m.source
	lines := []string{m.styles.title.Render(ansi.Truncate(s.title, m.width, "…"))}
	page := m.pageSize()
	for i := s.top; i < len(s.lines) && i < s.top+page; i++ {
		lines = append(lines, ansi.Truncate(s.lines[i], m.width, "…"))
	}
	for len(lines) < page+1 {
		lines = append(lines, "")
	}
	lines = append(lines, m.styles.status.Render(helpLine([]key.Binding{keys.Back})))
	return strings.Join(lines, "\n")
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
