package exportjar

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xonecas/jpx/internal/jdtls"
)

// Scope labels of classpath entries.
const (
	ScopeRuntime = "Runtime"
	ScopeTest    = "Test"
)

// Entry kinds.
const (
	KindExternal = "external"
	KindInternal = "internal"
)

// ClasspathEntry is one candidate for the exported jar.
type ClasspathEntry struct {
	Path   string
	Label  string
	Scope  string
	Kind   string
	Picked bool
}

// candidates collects the classpath entries of every project, runtime scope
// first, keeping the first occurrence of each path.
func candidates(ctx context.Context, svc Service, projects []jdtls.NodeData, projectPath string) ([]ClasspathEntry, error) {
	var entries []ClasspathEntry
	seen := make(map[string]bool)
	for _, p := range projects {
		runtime, err := svc.GetClasspaths(ctx, p.URI, jdtls.ScopeRuntime)
		if err != nil {
			return nil, fmt.Errorf("runtime classpath of %s: %w", p.Name, err)
		}
		entries = collect(entries, seen, runtime.Classpaths, projectPath, true)
		entries = collect(entries, seen, runtime.Modulepaths, projectPath, true)

		test, err := svc.GetClasspaths(ctx, p.URI, jdtls.ScopeTest)
		if err != nil {
			return nil, fmt.Errorf("test classpath of %s: %w", p.Name, err)
		}
		entries = collect(entries, seen, test.Classpaths, projectPath, false)
		entries = collect(entries, seen, test.Modulepaths, projectPath, false)
	}
	return entries, nil
}

func collect(entries []ClasspathEntry, seen map[string]bool, paths []string, projectPath string, runtime bool) []ClasspathEntry {
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true

		e := ClasspathEntry{Path: p, Scope: ScopeTest, Kind: KindInternal, Picked: runtime}
		if runtime {
			e.Scope = ScopeRuntime
		}
		if filepath.Ext(p) == ".jar" {
			e.Kind = KindExternal
			e.Label = filepath.Base(p)
		} else {
			e.Label = strings.TrimPrefix(p, projectPath+string(filepath.Separator))
		}
		entries = append(entries, e)
	}
	return entries
}

// sortEntries orders by scope, then kind descending, then label.
func sortEntries(entries []ClasspathEntry) {
	slices.SortStableFunc(entries, func(a, b ClasspathEntry) int {
		if c := cmp.Compare(a.Scope, b.Scope); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Kind, a.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
}

func entryItems(entries []ClasspathEntry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Label: e.Label, Description: e.Scope, Value: e.Path, Picked: e.Picked}
	}
	return items
}
