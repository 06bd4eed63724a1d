package explorer

import (
	"testing"

	"github.com/xonecas/jpx/internal/jdtls"
)

func TestRemoveNodeChildren(t *testing.T) {
	e := &env{cache: NewNodeCache(), showMembers: func() bool { return false }}
	project := newNode(e, KindProject, jdtls.NodeData{Name: "app", Path: "/w/app"}, nil)
	root := newNode(e, KindPackageRoot, jdtls.NodeData{Name: "src", Path: "/w/app/src"}, project)
	pkg := newNode(e, KindPackage, jdtls.NodeData{Name: "com.example"}, root)
	typ := newNode(e, KindPrimaryType, jdtls.NodeData{Name: "App"}, pkg)
	other := newNode(e, KindProject, jdtls.NodeData{Name: "lib", Path: "/w/lib"}, nil)
	otherRoot := newNode(e, KindPackageRoot, jdtls.NodeData{Name: "src", Path: "/w/lib/src"}, other)

	c := e.cache
	c.SaveNodes([]*Node{project, other})
	c.SaveNodes([]*Node{root})
	c.SaveNodes([]*Node{pkg})
	c.SaveNodes([]*Node{typ})
	c.SaveNodes([]*Node{otherRoot})
	c.SaveNodes(nil)
	if c.Len() != 5 {
		t.Fatalf("Len = %d, want 5", c.Len())
	}

	c.RemoveNodeChildren(root)
	for _, n := range []*Node{root, pkg} {
		if _, ok := c.Get(n.ID()); ok {
			t.Errorf("%s still cached", n.ID())
		}
	}
	for _, id := range []string{rootKey, project.ID(), other.ID()} {
		if _, ok := c.Get(id); !ok {
			t.Errorf("%s dropped", id)
		}
	}

	c.RemoveNodeChildren(nil)
	if c.Len() != 0 {
		t.Errorf("Len after clear = %d", c.Len())
	}
}

func TestIdentityIncludesParentPath(t *testing.T) {
	e := &env{cache: NewNodeCache(), showMembers: func() bool { return false }}
	a := newNode(e, KindProject, jdtls.NodeData{Name: "a", Path: "/a"}, nil)
	b := newNode(e, KindProject, jdtls.NodeData{Name: "b", Path: "/b"}, nil)
	pa := newNode(e, KindPackage, jdtls.NodeData{Name: "p"}, a)
	pb := newNode(e, KindPackage, jdtls.NodeData{Name: "p"}, b)
	if pa.ID() == pb.ID() {
		t.Errorf("same identity %q under different parents", pa.ID())
	}
	if pa.Project() != a {
		t.Error("project pointer not inherited")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		data jdtls.NodeData
		want Kind
	}{
		{jdtls.NodeData{Kind: jdtls.KindPrimaryType, URI: "file:///w/A.java"}, KindPrimaryType},
		{jdtls.NodeData{Kind: jdtls.KindPrimaryType, URI: "jdt://contents/rt.jar/java.lang/String.class"}, KindTypeRoot},
		{jdtls.NodeData{Kind: jdtls.KindPrimaryType, Path: "/lib/A.class"}, KindTypeRoot},
		{jdtls.NodeData{Kind: jdtls.KindFolder}, KindFolder},
		{jdtls.NodeData{Kind: jdtls.KindFile}, KindFile},
		{jdtls.NodeData{Kind: 42}, KindFile},
	}
	for _, tt := range tests {
		if got := kindOf(tt.data); got != tt.want {
			t.Errorf("kindOf(%+v) = %s, want %s", tt.data, got, tt.want)
		}
	}
}
