package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestHistory(t *testing.T, retention time.Duration) *History {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	h, err := Open(dbPath, retention)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSaveAndList(t *testing.T) {
	h := openTestHistory(t, 0)
	ctx := context.Background()

	if err := h.SaveExport(ctx, ExportRecord{
		ProjectURI:  "file:///w/app",
		MainClass:   "com.example.App",
		Destination: "/w/app/app.jar",
		Entries:     3,
		Outcome:     OutcomeSuccess,
	}); err != nil {
		t.Fatal(err)
	}
	if err := h.SaveExport(ctx, ExportRecord{ProjectURI: "file:///w/app", Outcome: OutcomeCancelled}); err != nil {
		t.Fatal(err)
	}

	recs, err := h.ListExports(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Outcome != OutcomeCancelled {
		t.Errorf("newest first: got %q", recs[0].Outcome)
	}
	if recs[1].ID == "" || recs[1].ID == recs[0].ID {
		t.Errorf("ids not assigned: %q %q", recs[0].ID, recs[1].ID)
	}
	if recs[1].Entries != 3 || recs[1].MainClass != "com.example.App" {
		t.Errorf("record = %+v", recs[1])
	}

	limited, err := h.ListExports(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d", len(limited))
	}
}

func TestLastExport(t *testing.T) {
	h := openTestHistory(t, 0)
	ctx := context.Background()

	if _, ok := h.LastExport(ctx, "file:///w/app"); ok {
		t.Fatal("expected miss")
	}
	h.SaveExport(ctx, ExportRecord{ProjectURI: "file:///w/app", Destination: "/w/app/app.jar", Outcome: OutcomeSuccess})
	h.SaveExport(ctx, ExportRecord{ProjectURI: "file:///w/app", Outcome: OutcomeFailed, Message: "boom"})

	rec, ok := h.LastExport(ctx, "file:///w/app")
	if !ok {
		t.Fatal("expected hit")
	}
	if rec.Destination != "/w/app/app.jar" {
		t.Errorf("got %+v", rec)
	}
}

func TestRetentionPurge(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	h, err := Open(dbPath, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	h.SaveExport(ctx, ExportRecord{ProjectURI: "old", Outcome: OutcomeSuccess, Created: time.Now().Add(-2 * time.Hour)})
	h.SaveExport(ctx, ExportRecord{ProjectURI: "new", Outcome: OutcomeSuccess})
	h.Close()

	h, err = Open(dbPath, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { h.Close() })
	recs, err := h.ListExports(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ProjectURI != "new" {
		t.Errorf("after purge: %+v", recs)
	}
}

func TestNilHistory(t *testing.T) {
	var h *History
	if err := h.SaveExport(context.Background(), ExportRecord{}); err != nil {
		t.Errorf("SaveExport on nil: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}
