// Package cli implements the jpx command-line interface.
//
// Every command that needs the project model starts a Java language server
// for the workspace folders (--folder, default the working directory) and
// stops it on exit. rename and history work offline.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/jpx/internal/config"
	"github.com/xonecas/jpx/internal/highlight"
	"github.com/xonecas/jpx/internal/store"
)

const appName = "jpx"

// ErrReported wraps errors that were already shown to the user. Callers only
// set the exit status for them.
var ErrReported = errors.New("already reported")

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information shown by --version. main sets it
// from ldflags.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// CLI holds state shared by all commands.
type CLI struct {
	in  io.Reader
	out io.Writer

	configPath  string
	folderPaths []string
	verbose     bool

	cfg     *config.Config
	cfgFile string // resolved config path, empty when none
	logFile *os.File
}

// New returns a CLI reading answers from in and printing to out.
func New(in io.Reader, out io.Writer) *CLI {
	return &CLI{in: in, out: out}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Explore Java projects and export runnable jars",
		Long:          `jpx talks to the Eclipse JDT language server to show the projects, packages and types of a workspace and to export them as jar files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			// The browser owns the terminal, so its logs always go to the file.
			return c.setupLogging(c.verbose && cmd.Name() != "browse")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logFile != nil {
				c.logFile.Close()
				c.logFile = nil
			}
		},
	}
	root.SetOut(c.out)
	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/jpx/config.toml)")
	flags.StringSliceVarP(&c.folderPaths, "folder", "f", nil, "workspace folder, repeatable (default: current directory)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level to stderr")

	root.AddCommand(c.treeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.revealCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.refreshLibsCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.historyCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	c.cfg = cfg
	c.cfgFile = path
	return nil
}

// setupLogging points the global zerolog logger at stderr when toStderr is
// set, else at jpx.log in the data directory.
func (c *CLI) setupLogging(toStderr bool) error {
	level := zerolog.InfoLevel
	if c.cfg.LogLevel != "" {
		if l, err := zerolog.ParseLevel(c.cfg.LogLevel); err == nil {
			level = l
		}
	}
	if c.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if toStderr {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.00"}).
			With().Timestamp().Logger()
		return nil
	}

	dir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, appName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	c.logFile = f
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return nil
}

func (c *CLI) theme() string { return c.cfg.UI.SyntaxThemeOrDefault() }

func (c *CLI) palette() highlight.Palette { return highlight.ThemePalette(c.theme()) }

// openHistory opens the export history, or returns nil when it is disabled
// or cannot be opened.
func (c *CLI) openHistory() *store.History {
	if !c.cfg.History.EnabledOrDefault() {
		return nil
	}
	dir, err := config.EnsureDataDir()
	if err != nil {
		log.Warn().Err(err).Msg("cli: no data dir, history disabled")
		return nil
	}
	h, err := store.Open(c.cfg.History.PathOrDefault(dir), c.cfg.History.Retention())
	if err != nil {
		log.Warn().Err(err).Msg("cli: history disabled")
		return nil
	}
	return h
}
