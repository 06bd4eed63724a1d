package explorer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreRule is one .gitignore line rewritten as a doublestar pattern
// relative to the folder root.
type ignoreRule struct {
	glob    string
	negate  bool
	dirOnly bool
}

// gitignore holds the rules of a folder's top level .gitignore. Later rules
// win, as in git.
type gitignore struct {
	rules []ignoreRule
}

// loadGitignore reads root/.gitignore. A missing file yields no rules.
func loadGitignore(root string) (*gitignore, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return &gitignore{}, nil
		}
		return nil, err
	}
	defer f.Close()

	g := &gitignore{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if r, ok := parseIgnoreLine(sc.Text()); ok {
			g.rules = append(g.rules, r)
		}
	}
	return g, sc.Err()
}

func parseIgnoreLine(line string) (ignoreRule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}
	var r ignoreRule
	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	// A slash anywhere but the end anchors the pattern to the root.
	if strings.Contains(line, "/") {
		line = strings.TrimPrefix(line, "/")
	} else {
		line = "**/" + line
	}
	if line == "" || !doublestar.ValidatePattern(line) {
		return ignoreRule{}, false
	}
	r.glob = line
	return r, true
}

// match reports whether rel, a slash separated path below the root, is
// ignored.
func (g *gitignore) match(rel string, isDir bool) bool {
	if g == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, r := range g.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(r.glob, rel); ok {
			ignored = !r.negate
		}
	}
	return ignored
}
