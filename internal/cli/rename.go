package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/jpx/internal/highlight"
	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/rename"
	"github.com/xonecas/jpx/internal/store"
	"github.com/xonecas/jpx/internal/workspace"
)

func (c *CLI) renameCommand() *cobra.Command {
	var (
		yes  bool
		undo bool
	)
	cmd := &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a Java type, package or file",
		Long: `Rename moves a .java file, package directory or resource. Renaming a type
also rewrites its declaration and constructors; the change is shown as a diff
before it is applied. --undo reverts the last rename.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if undo {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			history := c.openHistory()
			defer history.Close()

			if undo {
				rec, err := history.UndoRename(ctx)
				if errors.Is(err, store.ErrNothingToUndo) {
					c.printInfo("Nothing to undo")
					return nil
				}
				if err != nil {
					return err
				}
				c.printSuccess("Restored %s", rec.OldPath)
				return nil
			}

			d, err := nodeDataForPath(args[0])
			if err != nil {
				return err
			}
			change, err := rename.Plan(d, args[1])
			if err != nil {
				return err
			}

			c.printInfo("%s → %s", change.OldPath, change.NewPath)
			if change.Diff != "" {
				fmt.Fprintln(c.out, highlight.Highlight(change.Diff, "change.diff", c.theme())+"\x1b[0m")
			}
			if !yes && !c.confirm("Apply?") {
				c.printWarning("Rename cancelled")
				return nil
			}
			var journal rename.Journal
			if history != nil {
				journal = history
			}
			if err := change.Apply(ctx, journal); err != nil {
				return err
			}
			c.printSuccess("Renamed to %s", filepath.Base(change.NewPath))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply without asking")
	cmd.Flags().BoolVar(&undo, "undo", false, "revert the last rename")
	return cmd
}

// nodeDataForPath describes a file or directory the way the server would:
// .java files are primary types, directories packages, anything else a file.
func nodeDataForPath(path string) (jdtls.NodeData, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return jdtls.NodeData{}, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return jdtls.NodeData{}, err
	}
	d := jdtls.NodeData{Name: fi.Name(), Path: abs, URI: workspace.PathToURI(abs), Kind: jdtls.KindFile}
	switch {
	case fi.IsDir():
		d.Kind = jdtls.KindPackage
	case filepath.Ext(abs) == ".java":
		d.Kind = jdtls.KindPrimaryType
		d.Name = strings.TrimSuffix(fi.Name(), ".java")
	}
	return d, nil
}
