package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestUndoRenameRestoresPathAndContent(t *testing.T) {
	h := openTestHistory(t, 0)
	ctx := context.Background()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "Foo.java")
	newPath := filepath.Join(dir, "Bar.java")

	if err := os.WriteFile(newPath, []byte("class Bar {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.RecordRename(ctx, RenameRecord{OldPath: oldPath, NewPath: newPath, OldContent: []byte("class Foo {}\n")}); err != nil {
		t.Fatal(err)
	}

	rec, err := h.UndoRename(ctx)
	if err != nil {
		t.Fatalf("UndoRename: %v", err)
	}
	if rec.NewPath != newPath {
		t.Errorf("record = %+v", rec)
	}
	got, err := os.ReadFile(oldPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "class Foo {}\n" {
		t.Errorf("content = %q", got)
	}
	if _, err := os.Stat(newPath); !os.IsNotExist(err) {
		t.Errorf("new path still present: %v", err)
	}

	if _, err := h.UndoRename(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("second undo: %v", err)
	}
}

func TestUndoRenameKeepsContentWhenNotRecorded(t *testing.T) {
	h := openTestHistory(t, 0)
	ctx := context.Background()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "util")
	newPath := filepath.Join(dir, "helpers")
	if err := os.Mkdir(newPath, 0o755); err != nil {
		t.Fatal(err)
	}
	h.RecordRename(ctx, RenameRecord{OldPath: oldPath, NewPath: newPath})

	if _, err := h.UndoRename(ctx); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(oldPath); err != nil || !fi.IsDir() {
		t.Errorf("old dir not restored: %v", err)
	}
}

func TestUndoRenameRefusesOccupiedPath(t *testing.T) {
	h := openTestHistory(t, 0)
	ctx := context.Background()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "A.java")
	newPath := filepath.Join(dir, "B.java")
	os.WriteFile(oldPath, nil, 0o644)
	os.WriteFile(newPath, nil, 0o644)
	h.RecordRename(ctx, RenameRecord{OldPath: oldPath, NewPath: newPath})

	if _, err := h.UndoRename(ctx); err == nil {
		t.Fatal("expected error for occupied old path")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("new path touched: %v", err)
	}
}

func TestNilHistoryUndo(t *testing.T) {
	var h *History
	if err := h.RecordRename(context.Background(), RenameRecord{}); err != nil {
		t.Errorf("RecordRename on nil: %v", err)
	}
	if _, err := h.UndoRename(context.Background()); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("UndoRename on nil: %v", err)
	}
}
