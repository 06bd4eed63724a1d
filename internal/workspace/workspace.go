// Package workspace holds the set of workspace folders the explorer works on
// and converts between file:// URIs and filesystem paths.
package workspace

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// Folder is one root folder opened in the workspace.
type Folder struct {
	Name string
	URI  string
}

// Path returns the filesystem path of the folder.
func (f Folder) Path() string {
	return URIToPath(f.URI)
}

// Folders reports the currently open workspace folders.
type Folders interface {
	Folders() []Folder
}

// Static is a fixed folder list.
type Static []Folder

// Folders implements Folders.
func (s Static) Folders() []Folder { return s }

// FromPaths builds a folder list from directory paths, named after their
// base names.
func FromPaths(paths ...string) Static {
	out := make(Static, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		out = append(out, Folder{Name: filepath.Base(abs), URI: PathToURI(abs)})
	}
	return out
}

// PathToURI converts a filesystem path to a file:// URI with percent-encoded
// segments.
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	segments := strings.Split(abs, "/")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = url.PathEscape(seg)
		}
	}
	return "file://" + strings.Join(segments, "/")
}

// URIToPath converts a file:// URI to a filesystem path. Anything that is not
// a file URI is returned unchanged.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}
	p := parsed.Path
	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// Contains reports whether path lies at or under dir.
func Contains(dir, path string) bool {
	dir = filepath.Clean(dir)
	path = filepath.Clean(path)
	if dir == path {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
