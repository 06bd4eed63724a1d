package explorer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGitignoreMatch(t *testing.T) {
	root := t.TempDir()
	body := "# build output\n/out/\n*.log\ngenerated/\n!keep.log\ndocs/api\n"
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	gi, err := loadGitignore(root)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"out", true, true},
		{"src/out", true, false},
		{"out", false, false},
		{"app.log", false, true},
		{"src/deep/app.log", false, true},
		{"keep.log", false, false},
		{"src/generated", true, true},
		{"docs/api", true, true},
		{"src/docs/api", true, false},
		{"src/demo/App.java", false, false},
	}
	for _, tt := range tests {
		if got := gi.match(tt.path, tt.isDir); got != tt.want {
			t.Errorf("match(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestGitignoreMissing(t *testing.T) {
	gi, err := loadGitignore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if gi.match("anything", false) {
		t.Error("empty rules must not ignore")
	}
	var nilRules *gitignore
	if nilRules.match("anything", true) {
		t.Error("nil rules must not ignore")
	}
}
