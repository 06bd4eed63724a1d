package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/xonecas/jpx/internal/browse"
	"github.com/xonecas/jpx/internal/explorer"
	"github.com/xonecas/jpx/internal/highlight"
	"github.com/xonecas/jpx/internal/treesitter"
	"github.com/xonecas/jpx/internal/workspace"
)

func (c *CLI) treeCommand() *cobra.Command {
	var (
		depth int
		width int
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the project tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.startSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.close()

			opts := explorer.RenderOptions{Depth: depth, Width: width}
			if !plain {
				opts.Styles = c.treeStyles()
			}
			out, err := explorer.Render(ctx, s.tree, opts)
			if err != nil {
				return fmt.Errorf("render tree: %w", err)
			}
			if out == "" {
				c.printWarning("No Java projects found")
				return nil
			}
			lipgloss.Fprint(c.out, out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "levels to expand below the projects (0 = all)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "truncate lines to this many columns")
	cmd.Flags().BoolVar(&plain, "plain", false, "no colors")
	return cmd
}

func (c *CLI) treeStyles() *explorer.RenderStyles {
	p := c.palette()
	return &explorer.RenderStyles{
		Icon:        lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color(p.Fg)),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim)),
		Guide:       lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border)),
	}
}

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the project tree interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.startSession(ctx, true)
			if err != nil {
				return err
			}
			defer s.close()
			history := c.openHistory()
			defer history.Close()

			opts := browse.Options{
				Provider: s.tree,
				Reader:   s.jdt,
				Theme:    c.theme(),
				Palette:  c.palette(),
			}
			for {
				res, err := browse.Run(ctx, opts, nil, nil)
				if err != nil {
					return err
				}
				if res.Action != browse.ActionExport {
					return nil
				}
				path, err := c.runExport(ctx, s, history, res.Target, false)
				switch {
				case err == nil:
					opts.Status = "exported " + path
				default:
					opts.Status = err.Error()
				}
			}
		},
	}
}

func (c *CLI) revealCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <file>",
		Short: "Show where a file sits in the project tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			s, err := c.startSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.close()

			chain, err := s.jdt.ResolvePath(ctx, workspace.PathToURI(abs))
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			node, err := s.tree.RevealPaths(ctx, chain)
			if err != nil {
				return err
			}
			if node == nil {
				c.printWarning("%s is not part of a Java project", abs)
				return nil
			}
			var parts []string
			for n := node; n != nil; n = n.Parent() {
				parts = append([]string{n.TreeItem().Label}, parts...)
			}
			c.printSuccess("%s", strings.Join(parts, " › "))
			return nil
		},
	}
}

func (c *CLI) showCommand() *cobra.Command {
	var (
		line    int
		outline bool
	)
	cmd := &cobra.Command{
		Use:   "show <file|jdt-uri>",
		Short: "Print a source file with syntax highlighting",
		Long:  "Print a source file with syntax highlighting. jdt:// URIs of library classes are fetched from the language server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target := args[0]
			var text, path string
			if strings.HasPrefix(target, "jdt:") {
				s, err := c.startSession(ctx, false)
				if err != nil {
					return err
				}
				defer s.close()
				text, err = s.jdt.ClassFileContents(ctx, target)
				if err != nil {
					return fmt.Errorf("class contents: %w", err)
				}
				if text == "" {
					return errors.New("no source attached")
				}
				path = "Class.class"
			} else {
				b, err := os.ReadFile(target)
				if err != nil {
					return err
				}
				text, path = string(b), target
			}
			if outline {
				if path == "Class.class" {
					path = "Class.java"
				}
				if !treesitter.Supported(path) {
					return fmt.Errorf("no outline for %s", filepath.Base(path))
				}
				syms, err := treesitter.ParseSource(path, []byte(text))
				if err != nil {
					return fmt.Errorf("parse: %w", err)
				}
				fmt.Fprint(c.out, treesitter.FormatOutline(syms))
				return nil
			}
			lines := highlight.Source(text, path, c.theme())
			if line > 0 && line <= len(lines) {
				lines = lines[line-1:]
			}
			for _, l := range lines {
				fmt.Fprintln(c.out, l+"\x1b[0m")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "start at this 1-based line")
	cmd.Flags().BoolVar(&outline, "outline", false, "list the declarations instead of the source")
	return cmd
}
