package explorer

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultIgnore lists directory names the watcher never descends into.
var DefaultIgnore = []string{".git", ".idea", ".gradle", ".settings", "node_modules", "target", "build", "bin", "out"}

// relevant matches the files whose changes can alter the tree.
const relevant = "{*.java,*.jar,*.class,pom.xml,*.gradle,*.gradle.kts,.classpath,.project}"

// Watcher schedules debounced full refreshes of a Provider when Java
// sources, jars or build files change under the watched folders.
type Watcher struct {
	p      *Provider
	fw     *fsnotify.Watcher
	ignore []string
	roots  map[string]*gitignore

	done     chan struct{}
	stopOnce sync.Once
}

// Watch starts watching every directory below roots, skipping names in
// ignore and paths excluded by each root's .gitignore. Stop it with Close
// or by cancelling ctx.
func Watch(ctx context.Context, p *Provider, roots []string, ignore []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if ignore == nil {
		ignore = DefaultIgnore
	}
	w := &Watcher{p: p, fw: fw, ignore: ignore, roots: make(map[string]*gitignore), done: make(chan struct{})}
	for _, root := range roots {
		gi, err := loadGitignore(root)
		if err != nil {
			log.Warn().Err(err).Str("root", root).Msg("explorer: .gitignore not read")
		}
		w.roots[filepath.Clean(root)] = gi
		if err := w.addTree(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("explorer: watch error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if w.ignored(ev.Name, w.isDir(ev.Name)) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if err := w.addTree(ev.Name); err == nil && w.isDir(ev.Name) {
			w.p.Refresh(true, nil)
			return
		}
	}
	gone := ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	if ok, _ := doublestar.Match(relevant, name); !ok && !gone {
		return
	}
	log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("explorer: change")
	w.p.Refresh(true, nil)
}

func (w *Watcher) isDir(path string) bool {
	for _, d := range w.fw.WatchList() {
		if d == path {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(path string, isDir bool) bool {
	name := filepath.Base(path)
	for _, pat := range w.ignore {
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
	}
	for root, gi := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if gi.match(rel, isDir) {
			return true
		}
	}
	return false
}

// addTree watches dir and every non-ignored directory below it. Files are
// skipped silently.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if path == dir {
				return fs.SkipAll
			}
			return nil
		}
		if path != dir && w.ignored(path, true) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}
