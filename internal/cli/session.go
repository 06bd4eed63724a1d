package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/jpx/internal/config"
	"github.com/xonecas/jpx/internal/explorer"
	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/lsp"
	"github.com/xonecas/jpx/internal/workspace"
)

// session is a running language server plus the explorer tree over it.
type session struct {
	client  *lsp.Client
	jdt     *jdtls.Client
	folders workspace.Static
	tree    *explorer.Provider
	watcher *explorer.Watcher

	showMembers atomic.Bool
	cfgWatcher  *fsnotify.Watcher
}

// folders returns the workspace folders from --folder, or the working
// directory.
func (c *CLI) folders() workspace.Static {
	paths := c.folderPaths
	if len(paths) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		paths = []string{wd}
	}
	return workspace.FromPaths(paths...)
}

// startSession launches the server. watch adds the file watcher when
// auto refresh is on.
func (c *CLI) startSession(ctx context.Context, watch bool) (*session, error) {
	folders := c.folders()
	c.printInfo("Starting Java language server...")

	client, err := lsp.Start(ctx, lsp.Options{
		Command:      c.cfg.LSP.CommandOrDefault(),
		Bundles:      c.cfg.LSP.Bundles,
		DataDir:      c.cfg.LSP.DataDir,
		LaunchMode:   c.cfg.LSP.LaunchMode,
		Settings:     c.cfg.LSP.Settings,
		ReadyTimeout: c.cfg.LSP.ReadyTimeout(),
		Folders:      folders,
	})
	if err != nil {
		return nil, err
	}

	jdt := jdtls.New(client, client)
	s := &session{client: client, jdt: jdt, folders: folders}
	s.showMembers.Store(c.cfg.Explorer.ShowMembers)
	s.tree = explorer.NewProvider(explorer.Config{
		Source:       jdt,
		Folders:      folders,
		Server:       client,
		RefreshDelay: c.cfg.Explorer.RefreshDelay(),
		ShowMembers:  s.showMembers.Load,
		OnEmpty: func(empty bool) {
			log.Debug().Bool("empty", empty).Msg("cli: explorer roots")
		},
	})

	if watch && c.cfg.Explorer.AutoRefreshOrDefault() {
		roots := make([]string, len(folders))
		for i, f := range folders {
			roots[i] = f.Path()
		}
		w, err := explorer.Watch(ctx, s.tree, roots, explorer.DefaultIgnore)
		if err != nil {
			log.Warn().Err(err).Msg("cli: file watcher disabled")
		} else {
			s.watcher = w
		}
	}
	if watch {
		c.watchConfig(s)
	}
	return s, nil
}

// watchConfig reloads the config file when it changes and applies the
// explorer settings to the running tree. The directory is watched because
// editors replace files on save.
func (c *CLI) watchConfig(s *session) {
	if c.cfgFile == "" {
		return
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug().Err(err).Msg("cli: config watcher disabled")
		return
	}
	if err := fw.Add(filepath.Dir(c.cfgFile)); err != nil {
		fw.Close()
		log.Debug().Err(err).Msg("cli: config watcher disabled")
		return
	}
	s.cfgWatcher = fw
	target := filepath.Clean(c.cfgFile)
	go func() {
		for ev := range fw.Events {
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			s.applyConfig(target)
		}
	}()
}

func (s *session) applyConfig(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Warn().Err(err).Msg("cli: config not reloaded")
		return
	}
	s.tree.SetRefreshDelay(cfg.Explorer.RefreshDelay())
	if s.showMembers.Swap(cfg.Explorer.ShowMembers) != cfg.Explorer.ShowMembers {
		s.tree.Refresh(false, nil)
	}
	log.Info().Dur("refresh_delay", cfg.Explorer.RefreshDelay()).Msg("cli: config reloaded")
}

func (s *session) close() {
	if s.cfgWatcher != nil {
		s.cfgWatcher.Close()
	}
	if s.watcher != nil {
		s.watcher.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("cli: server shutdown")
	}
}
