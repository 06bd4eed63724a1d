package explorer

import (
	"context"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// RenderOptions controls Render.
type RenderOptions struct {
	// Depth limits how many levels below the roots are loaded. 0 means
	// unlimited.
	Depth int
	// Width truncates every line to this many cells. 0 disables it.
	Width int
	// Styles colors icons and descriptions. Nil renders plain text.
	Styles *RenderStyles
}

// RenderStyles colors the parts of a rendered line.
type RenderStyles struct {
	Icon        lipgloss.Style
	Label       lipgloss.Style
	Description lipgloss.Style
	Guide       lipgloss.Style
}

// Render draws the tree below the roots as indented text, loading children
// on the way.
func Render(ctx context.Context, p *Provider, opts RenderOptions) (string, error) {
	roots, err := p.Children(ctx, nil)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, r := range roots {
		writeLine(&b, "", r.TreeItem(), opts)
		if err := renderChildren(ctx, p, &b, r, "", 1, opts); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func renderChildren(ctx context.Context, p *Provider, b *strings.Builder, n *Node, indent string, depth int, opts RenderOptions) error {
	if opts.Depth > 0 && depth > opts.Depth {
		return nil
	}
	children, err := p.Children(ctx, n)
	if err != nil {
		return err
	}
	for i, c := range children {
		last := i == len(children)-1
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}
		writeLine(b, guide(indent+branch, opts), c.TreeItem(), opts)
		if err := renderChildren(ctx, p, b, c, indent+next, depth+1, opts); err != nil {
			return err
		}
	}
	return nil
}

func guide(s string, opts RenderOptions) string {
	if opts.Styles == nil {
		return s
	}
	return opts.Styles.Guide.Render(s)
}

func writeLine(b *strings.Builder, prefix string, it TreeItem, opts RenderOptions) {
	icon, label, desc := it.Icon, it.Label, it.Description
	if s := opts.Styles; s != nil {
		icon = s.Icon.Render(icon)
		label = s.Label.Render(label)
		if desc != "" {
			desc = s.Description.Render(desc)
		}
	}
	line := prefix + icon + " " + label
	if desc != "" {
		line += "  " + desc
	}
	if opts.Width > 0 {
		line = ansi.Truncate(line, opts.Width, "…")
	}
	b.WriteString(line)
	b.WriteByte('\n')
}
