package rename

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/store"
	"github.com/xonecas/jpx/internal/workspace"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    jdtls.NodeKind
		wantErr bool
	}{
		{"Foo", jdtls.KindPrimaryType, false},
		{"Foo.java", jdtls.KindPrimaryType, false},
		{"foo", jdtls.KindPrimaryType, true},
		{"$Foo", jdtls.KindPrimaryType, true},
		{"1Foo", jdtls.KindPrimaryType, true},
		{"Foo-Bar", jdtls.KindPrimaryType, true},
		{"", jdtls.KindPrimaryType, true},
		{"util", jdtls.KindPackage, false},
		{"Util", jdtls.KindPackage, true},
		{"a.b", jdtls.KindPackage, true},
		{"class", jdtls.KindPackage, true},
		{"a..b", jdtls.KindFile, true},
		{"notes.txt", jdtls.KindFile, false},
		{"main", jdtls.KindPackageRoot, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.name, tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q, %s) = %v, wantErr %v", tt.name, tt.kind, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error %v is not ErrInvalidName", err)
			}
		})
	}
}

func TestMutable(t *testing.T) {
	tests := []struct {
		d    jdtls.NodeData
		want bool
	}{
		{jdtls.NodeData{Kind: jdtls.KindPrimaryType, URI: "file:///w/A.java"}, true},
		{jdtls.NodeData{Kind: jdtls.KindPackage, URI: "file:///w/src/a"}, true},
		{jdtls.NodeData{Kind: jdtls.KindPrimaryType, URI: "jdt://contents/rt.jar/java.lang/String.class"}, false},
		{jdtls.NodeData{Kind: jdtls.KindProject, URI: "file:///w"}, false},
		{jdtls.NodeData{Kind: jdtls.KindContainer}, false},
	}
	for _, tt := range tests {
		if got := Mutable(tt.d); got != tt.want {
			t.Errorf("Mutable(%+v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestPrefill(t *testing.T) {
	if got := Prefill(jdtls.NodeData{Kind: jdtls.KindPrimaryType, Name: "App", URI: "file:///w/App.java"}); got != "App" {
		t.Errorf("primary type prefill = %q", got)
	}
	if got := Prefill(jdtls.NodeData{Kind: jdtls.KindFile, Name: "x", URI: "file:///w/pom.xml"}); got != "pom.xml" {
		t.Errorf("file prefill = %q", got)
	}
}

const appSource = `package com.example;

public class App {
    public App() {}

    App(int n) {}

    public static void main(String[] args) {
        new App().run();
    }

    void run() {}
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlanPrimaryTypeRewritesDeclaration(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "App.java")
	writeFile(t, oldPath, appSource)
	d := jdtls.NodeData{Name: "App", Kind: jdtls.KindPrimaryType, URI: workspace.PathToURI(oldPath)}

	c, err := Plan(d, "Main")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if c.NewPath != filepath.Join(dir, "Main.java") {
		t.Errorf("NewPath = %s", c.NewPath)
	}
	out := string(c.NewContent)
	for _, want := range []string{"public class Main {", "public Main() {}", "    Main(int n) {}", "new Main().run()"} {
		if !strings.Contains(out, want) {
			t.Errorf("rewritten source missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "App") {
		t.Errorf("old name left in source:\n%s", out)
	}
	if !strings.Contains(c.Diff, "-public class App {") || !strings.Contains(c.Diff, "+public class Main {") {
		t.Errorf("diff:\n%s", c.Diff)
	}
}

func TestPlanRefusesExistingTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "App.java"), appSource)
	writeFile(t, filepath.Join(dir, "Main.java"), "class Main {}\n")
	d := jdtls.NodeData{Name: "App", Kind: jdtls.KindPrimaryType, URI: workspace.PathToURI(filepath.Join(dir, "App.java"))}

	if _, err := Plan(d, "Main"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestPlanRefusesBinary(t *testing.T) {
	d := jdtls.NodeData{Name: "String", Kind: jdtls.KindPrimaryType, URI: "jdt://contents/rt.jar/java.lang/String.class"}
	if _, err := Plan(d, "Str"); !errors.Is(err, ErrNotMutable) {
		t.Fatalf("expected ErrNotMutable, got %v", err)
	}
}

type memJournal struct{ recs []store.RenameRecord }

func (j *memJournal) RecordRename(_ context.Context, rec store.RenameRecord) error {
	j.recs = append(j.recs, rec)
	return nil
}

func TestApplyPackage(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "src", "util")
	writeFile(t, filepath.Join(pkg, "Strings.java"), "package util;\n")
	d := jdtls.NodeData{Name: "util", Kind: jdtls.KindPackage, URI: workspace.PathToURI(pkg)}

	c, err := Plan(d, "helpers")
	if err != nil {
		t.Fatal(err)
	}
	if c.Diff != "" || c.NewContent != nil {
		t.Errorf("package rename should not rewrite content: %+v", c)
	}
	j := &memJournal{}
	if err := c.Apply(context.Background(), j); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "helpers", "Strings.java")); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
	if len(j.recs) != 1 || j.recs[0].OldPath != pkg || j.recs[0].OldContent != nil {
		t.Errorf("journal = %+v", j.recs)
	}
}

func TestApplyPrimaryType(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "App.java")
	writeFile(t, oldPath, appSource)
	d := jdtls.NodeData{Name: "App", Kind: jdtls.KindPrimaryType, URI: workspace.PathToURI(oldPath)}

	c, err := Plan(d, "Main.java")
	if err != nil {
		t.Fatal(err)
	}
	j := &memJournal{}
	if err := c.Apply(context.Background(), j); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(c.NewPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "public class Main") {
		t.Errorf("content not rewritten:\n%s", got)
	}
	if string(j.recs[0].OldContent) != appSource {
		t.Errorf("journal lost old content")
	}
	if err := c.Apply(context.Background(), nil); err == nil {
		t.Error("second Apply should fail")
	}
}
