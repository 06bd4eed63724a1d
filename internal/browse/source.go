package browse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/jpx/internal/highlight"
	"github.com/xonecas/jpx/internal/workspace"
)

// ErrNoSource is returned for nodes without a document to show.
var ErrNoSource = errors.New("browse: no source for this element")

type sourceMsg struct {
	title string
	lines []string
	line  int
	err   error
}

// sourceView is a scrollable highlighted document.
type sourceView struct {
	title string
	lines []string
	top   int
}

func newSourceView(msg sourceMsg) *sourceView {
	return &sourceView{title: msg.title, lines: msg.lines, top: msg.line}
}

// handleKey scrolls the view. Back asks the model to close it.
func (v *sourceView) handleKey(msg tea.KeyPressMsg, page int) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Back):
		return func() tea.Msg { return closeSourceMsg{} }
	case key.Matches(msg, keys.Up):
		v.scroll(-1, page)
	case key.Matches(msg, keys.Down):
		v.scroll(1, page)
	case key.Matches(msg, keys.PageUp):
		v.scroll(-page, page)
	case key.Matches(msg, keys.PageDown):
		v.scroll(page, page)
	}
	return nil
}

type closeSourceMsg struct{}

func (v *sourceView) scroll(delta, page int) {
	v.top += delta
	if last := len(v.lines) - page; v.top > last {
		v.top = last
	}
	if v.top < 0 {
		v.top = 0
	}
}

// open loads the document of r in the background.
func (m *Model) open(r row) tea.Cmd {
	if r.item.Command != "open" || r.item.URI == "" {
		m.status = ErrNoSource.Error()
		return nil
	}
	m.loading = true
	ctx, reader, theme := m.ctx, m.opts.Reader, m.opts.Theme
	it, name := r.item, r.node.Name()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		text, path, err := loadSource(ctx, reader, it.URI, name)
		if err != nil {
			return sourceMsg{err: err}
		}
		return sourceMsg{
			title: path,
			lines: highlight.Source(text, path, theme),
			line:  it.Line,
		}
	})
}

// loadSource reads a file URI from disk and asks the server for anything
// else. path is the name used for the title and lexer choice.
func loadSource(ctx context.Context, reader ClassReader, uri, name string) (text, path string, err error) {
	if strings.HasPrefix(uri, "file:") {
		path = workspace.URIToPath(uri)
		b, err := os.ReadFile(path)
		if err != nil {
			return "", path, fmt.Errorf("read %s: %w", path, err)
		}
		return string(b), path, nil
	}
	if reader == nil {
		return "", "", ErrNoSource
	}
	text, err = reader.ClassFileContents(ctx, uri)
	if err != nil {
		return "", "", fmt.Errorf("class contents: %w", err)
	}
	if text == "" {
		return "", "", ErrNoSource
	}
	return text, name + ".class", nil
}
