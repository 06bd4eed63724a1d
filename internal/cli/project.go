package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/workspace"
)

// buildFilePattern matches the build files that describe a project.
const buildFilePattern = "{pom.xml,*.gradle}"

// ErrNoBuildFile is returned when a project folder has no Maven or Gradle
// build file.
var ErrNoBuildFile = errors.New("no pom.xml or *.gradle file")

func (c *CLI) buildCommand() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.build(cmd, full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "clean and rebuild everything")
	return cmd
}

func (c *CLI) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Discard build output and rebuild the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.build(cmd, true)
		},
	}
}

func (c *CLI) build(cmd *cobra.Command, full bool) error {
	ctx := cmd.Context()
	s, err := c.startSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()

	status, err := s.jdt.BuildWorkspace(ctx, full)
	if err != nil {
		return err
	}
	switch status {
	case jdtls.CompileSucceed:
		c.printSuccess("Build succeeded")
	case jdtls.CompileWithError:
		c.printWarning("Build finished with compile errors")
	case jdtls.CompileCancelled:
		c.printWarning("Build cancelled")
	default:
		return fmt.Errorf("build %s", status)
	}
	return nil
}

func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update [project-dir]",
		Short: "Reload a project's configuration from its build file",
		Long: `Update finds pom.xml or *.gradle in the project folder (default: the first
workspace folder) and asks the server to re-read it. Without a local build file
every build file the server knows about is updated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := c.folders()[0].Path()
			if len(args) == 1 {
				dir = args[0]
			}
			buildFile, findErr := findBuildFile(dir)
			if findErr != nil && !errors.Is(findErr, ErrNoBuildFile) {
				return findErr
			}

			s, err := c.startSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.close()

			targets := []string{workspace.PathToURI(buildFile)}
			if findErr != nil {
				targets, err = s.jdt.ResolveBuildFiles(ctx)
				if err != nil {
					return fmt.Errorf("resolve build files: %w", err)
				}
				if len(targets) == 0 {
					return fmt.Errorf("%s: %w", dir, ErrNoBuildFile)
				}
			}
			for _, uri := range targets {
				if err := s.jdt.UpdateProjectConfiguration(ctx, uri); err != nil {
					return fmt.Errorf("update %s: %w", uri, err)
				}
				c.printSuccess("Updated %s", workspace.URIToPath(uri))
			}
			return nil
		},
	}
}

// findBuildFile returns the first build file directly inside dir.
func findBuildFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	matches, err := doublestar.Glob(os.DirFS(abs), buildFilePattern)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", abs, err)
		}
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%s: %w", abs, ErrNoBuildFile)
	}
	return filepath.Join(abs, matches[0]), nil
}

func (c *CLI) refreshLibsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-libs [project-dir]",
		Short: "Re-read a project's referenced libraries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := c.folders()[0].Path()
			if len(args) == 1 {
				dir = args[0]
			}
			s, err := c.startSession(ctx, false)
			if err != nil {
				return err
			}
			defer s.close()

			ok, err := s.jdt.RefreshLibraries(ctx, workspace.PathToURI(dir))
			if err != nil {
				return fmt.Errorf("refresh libraries: %w", err)
			}
			if !ok {
				c.printWarning("The server did not refresh the libraries of %s", dir)
				return nil
			}
			s.tree.Refresh(false, nil)
			c.printSuccess("Refreshed libraries of %s", dir)
			return nil
		},
	}
}
