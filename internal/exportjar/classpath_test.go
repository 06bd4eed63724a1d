package exportjar

import (
	"context"
	"testing"

	"github.com/xonecas/jpx/internal/jdtls"
)

func TestCandidatesDedup(t *testing.T) {
	svc := &fakeService{classpaths: map[string]jdtls.ClasspathResult{
		jdtls.ScopeRuntime: {
			Classpaths:  []string{"/w/app/bin", "/m2/guava.jar"},
			Modulepaths: []string{"/m2/guava.jar"},
		},
		jdtls.ScopeTest: {
			Classpaths: []string{"/w/app/bin", "/w/app/test-bin", "/m2/junit.jar"},
		},
	}}
	projects := []jdtls.NodeData{{Name: "app", URI: "file:///w/app"}, {Name: "again", URI: "file:///w/app"}}

	entries, err := candidates(context.Background(), svc, projects, "/w/app")
	if err != nil {
		t.Fatal(err)
	}
	want := []ClasspathEntry{
		{Path: "/w/app/bin", Label: "bin", Scope: ScopeRuntime, Kind: KindInternal, Picked: true},
		{Path: "/m2/guava.jar", Label: "guava.jar", Scope: ScopeRuntime, Kind: KindExternal, Picked: true},
		{Path: "/w/app/test-bin", Label: "test-bin", Scope: ScopeTest, Kind: KindInternal},
		{Path: "/m2/junit.jar", Label: "junit.jar", Scope: ScopeTest, Kind: KindExternal},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestSortEntries(t *testing.T) {
	entries := []ClasspathEntry{
		{Label: "z.jar", Scope: ScopeTest, Kind: KindExternal},
		{Label: "b.jar", Scope: ScopeRuntime, Kind: KindExternal},
		{Label: "bin", Scope: ScopeRuntime, Kind: KindInternal},
		{Label: "a.jar", Scope: ScopeRuntime, Kind: KindExternal},
		{Label: "test-bin", Scope: ScopeTest, Kind: KindInternal},
	}
	sortEntries(entries)

	want := []string{"bin", "a.jar", "b.jar", "test-bin", "z.jar"}
	for i, w := range want {
		if entries[i].Label != w {
			t.Errorf("position %d = %s, want %s", i, entries[i].Label, w)
		}
	}
}

func TestEntryItemsKeepPicked(t *testing.T) {
	items := entryItems([]ClasspathEntry{
		{Path: "/w/bin", Label: "bin", Scope: ScopeRuntime, Picked: true},
		{Path: "/w/t", Label: "t", Scope: ScopeTest},
	})
	if !items[0].Picked || items[1].Picked {
		t.Errorf("picked flags = %v %v", items[0].Picked, items[1].Picked)
	}
	if items[0].Value != "/w/bin" || items[0].Description != ScopeRuntime {
		t.Errorf("item = %+v", items[0])
	}
}
