// Package explorer implements the Java project tree: lazily loaded nodes, the
// node cache, and the provider that owns the root snapshot and refreshes.
package explorer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xonecas/jpx/internal/jdtls"
)

// Kind tags a node variant.
type Kind int

const (
	KindWorkspace Kind = iota + 1
	KindProject
	KindContainer
	KindPackageRoot
	KindPackage
	KindPrimaryType
	KindMember
	KindTypeRoot
	KindFolder
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindWorkspace:
		return "workspace"
	case KindProject:
		return "project"
	case KindContainer:
		return "container"
	case KindPackageRoot:
		return "packageRoot"
	case KindPackage:
		return "package"
	case KindPrimaryType:
		return "primaryType"
	case KindMember:
		return "member"
	case KindTypeRoot:
		return "typeRoot"
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	}
	return "unknown"
}

// Source is the part of the language server the tree reads from.
type Source interface {
	GetProjects(ctx context.Context, folderURI string) ([]jdtls.NodeData, error)
	GetPackageData(ctx context.Context, q jdtls.PackageQuery) ([]jdtls.NodeData, error)
	DocumentSymbols(ctx context.Context, uri string) ([]jdtls.Symbol, error)
}

// TreeItem is what a view needs to draw one node.
type TreeItem struct {
	Label       string
	Description string
	Icon        string
	Collapsible bool
	// Command is "open" for nodes that show a document, empty otherwise.
	Command string
	URI     string
	Line    int
}

// env is shared by every node of one tree.
type env struct {
	src         Source
	cache       *NodeCache
	showMembers func() bool
}

// Node is one element of the explorer tree.
type Node struct {
	kind    Kind
	data    jdtls.NodeData
	symbol  *jdtls.Symbol
	id      string
	parent  *Node
	project *Node
	env     *env

	mu       sync.Mutex
	children []*Node
	loaded   bool
}

func newNode(e *env, kind Kind, data jdtls.NodeData, parent *Node) *Node {
	n := &Node{kind: kind, data: data, parent: parent, env: e}
	switch {
	case kind == KindProject:
		n.project = n
	case parent != nil:
		n.project = parent.project
	}
	n.id = identity(parent, kind, data.Name, data.Path)
	return n
}

func newMemberNode(e *env, sym jdtls.Symbol, parent *Node) *Node {
	data := jdtls.NodeData{Name: sym.Name, Kind: jdtls.KindMember, URI: parent.data.URI}
	n := &Node{kind: KindMember, data: data, symbol: &sym, parent: parent, project: parent.project, env: e}
	n.id = identity(parent, KindMember, sym.Name, fmt.Sprintf("@%d", sym.Range.Start.Line))
	return n
}

func identity(parent *Node, kind Kind, name, path string) string {
	self := kind.String() + ":" + name
	if path != "" {
		self += "(" + path + ")"
	}
	if parent == nil {
		return self
	}
	return parent.id + "/" + self
}

// ID is the node's identity, unique within one tree.
func (n *Node) ID() string { return n.id }

// Kind returns the variant tag.
func (n *Node) Kind() Kind { return n.kind }

// Data returns the descriptor the node wraps.
func (n *Node) Data() jdtls.NodeData { return n.data }

// Name returns the display name.
func (n *Node) Name() string { return n.data.Name }

// Parent returns the parent node, nil for roots.
func (n *Node) Parent() *Node { return n.parent }

// Project returns the project the node belongs to, nil above project level.
func (n *Node) Project() *Node { return n.project }

// Symbol returns the document symbol of a member node.
func (n *Node) Symbol() *jdtls.Symbol { return n.symbol }

// Children loads the node's children on first use and records them in the
// node cache. Later calls return the same list until Reset.
func (n *Node) Children(ctx context.Context) ([]*Node, error) {
	n.mu.Lock()
	if n.loaded {
		c := n.children
		n.mu.Unlock()
		return c, nil
	}
	n.mu.Unlock()

	children, err := behaviorOf(n.kind).load(ctx, n)
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []*Node{}
	}

	n.mu.Lock()
	n.children = children
	n.loaded = true
	n.mu.Unlock()

	n.env.cache.SaveNodes(children)
	return children, nil
}

// Reset forgets loaded children so the next Children call asks the server
// again.
func (n *Node) Reset() {
	n.mu.Lock()
	n.children = nil
	n.loaded = false
	n.mu.Unlock()
}

// TreeItem returns the node's display descriptor.
func (n *Node) TreeItem() TreeItem {
	return behaviorOf(n.kind).item(n)
}

// RevealPaths walks chain below n, matching each element against the loaded
// children by kind, name and path. Returns nil when some element has no
// match.
func (n *Node) RevealPaths(ctx context.Context, chain []jdtls.NodeData) (*Node, error) {
	if len(chain) == 0 {
		return n, nil
	}
	children, err := n.Children(ctx)
	if err != nil {
		return nil, err
	}
	next := chain[0]
	for _, c := range children {
		if c.matches(next) {
			return c.RevealPaths(ctx, chain[1:])
		}
	}
	return nil, nil
}

func (n *Node) matches(d jdtls.NodeData) bool {
	if n.data.Name != d.Name {
		return false
	}
	if d.Path != "" && n.data.Path != d.Path {
		return false
	}
	return kindOf(d) == n.kind || (n.kind == KindTypeRoot && d.Kind == jdtls.KindPrimaryType)
}

// packageRoot returns the nearest package root at or above n.
func (n *Node) packageRoot() *Node {
	for p := n; p != nil; p = p.parent {
		if p.kind == KindPackageRoot {
			return p
		}
	}
	return nil
}

func (n *Node) projectURI() string {
	if n.project == nil {
		return ""
	}
	return n.project.data.URI
}

// kindOf maps a server descriptor to the node variant that wraps it.
func kindOf(d jdtls.NodeData) Kind {
	switch d.Kind {
	case jdtls.KindWorkspace:
		return KindWorkspace
	case jdtls.KindProject:
		return KindProject
	case jdtls.KindContainer:
		return KindContainer
	case jdtls.KindPackageRoot:
		return KindPackageRoot
	case jdtls.KindPackage:
		return KindPackage
	case jdtls.KindPrimaryType:
		if strings.HasPrefix(d.URI, "jdt:") || strings.HasSuffix(d.Path, ".class") {
			return KindTypeRoot
		}
		return KindPrimaryType
	case jdtls.KindFolder:
		return KindFolder
	case jdtls.KindMember:
		return KindMember
	}
	return KindFile
}
