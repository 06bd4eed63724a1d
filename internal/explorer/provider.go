package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/jpx/internal/debounce"
	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/workspace"
)

// DefaultRefreshDelay is used when no refresh delay is configured.
const DefaultRefreshDelay = 2000 * time.Millisecond

// ServerState reports the language server mode.
type ServerState interface {
	// IsLightweight is true when the server has no project model.
	IsLightweight() bool
	// AwaitReady blocks until a pending server mode switch finished.
	AwaitReady(ctx context.Context) error
}

// Config holds the collaborators of a Provider. Server, ShowMembers and
// OnEmpty are optional.
type Config struct {
	Source       Source
	Folders      workspace.Folders
	Server       ServerState
	RefreshDelay time.Duration
	ShowMembers  func() bool
	// OnEmpty is told whether the last root computation found nothing.
	OnEmpty func(empty bool)
}

// Provider serves the explorer tree: root snapshot, lazy children, parent
// lookup and debounced refreshes.
type Provider struct {
	env     *env
	folders workspace.Folders
	server  ServerState
	onEmpty func(bool)
	lock    *Lock

	mu         sync.Mutex
	roots      []*Node
	rootsValid bool
	gen        int // bumped by every full refresh
	refresher  *debounce.Debouncer[*Node]
	listeners  map[int]func(*Node)
	nextID     int
}

// NewProvider returns a Provider with an empty snapshot and cache.
func NewProvider(cfg Config) *Provider {
	showMembers := cfg.ShowMembers
	if showMembers == nil {
		showMembers = func() bool { return false }
	}
	p := &Provider{
		env: &env{
			src:         cfg.Source,
			cache:       NewNodeCache(),
			showMembers: showMembers,
		},
		folders:   cfg.Folders,
		server:    cfg.Server,
		onEmpty:   cfg.OnEmpty,
		lock:      NewLock(),
		listeners: make(map[int]func(*Node)),
	}
	p.SetRefreshDelay(cfg.RefreshDelay)
	return p
}

// Cache returns the node cache the provider writes to.
func (p *Provider) Cache() *NodeCache { return p.env.cache }

// Children returns the root nodes when node is nil, else node's children.
// In lightweight server mode the tree is always empty.
func (p *Provider) Children(ctx context.Context, node *Node) ([]*Node, error) {
	if p.server != nil {
		if p.server.IsLightweight() {
			return []*Node{}, nil
		}
		if err := p.server.AwaitReady(ctx); err != nil {
			return nil, err
		}
	}

	if node == nil {
		roots, err := p.rootNodes(ctx)
		if err != nil {
			return nil, err
		}
		p.env.cache.SaveNodes(roots)
		return roots, nil
	}
	return node.Children(ctx)
}

// Parent returns node's parent.
func (p *Provider) Parent(node *Node) *Node {
	return node.Parent()
}

// TreeItem returns node's display descriptor.
func (p *Provider) TreeItem(node *Node) TreeItem {
	return node.TreeItem()
}

// Refresh invalidates node (nil = whole tree). With debounce the invalidation
// waits for the refresh delay and coalesces with later calls, the latest
// call's node winning. Without debounce any pending invalidation runs now.
func (p *Provider) Refresh(debounce bool, node *Node) {
	p.mu.Lock()
	d := p.refresher
	p.mu.Unlock()

	d.Call(node)
	if !debounce {
		d.Flush()
	}
}

// SetRefreshDelay replaces the debounce window, dropping a pending refresh.
func (p *Provider) SetRefreshDelay(wait time.Duration) {
	if wait <= 0 {
		wait = DefaultRefreshDelay
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refresher != nil {
		p.refresher.Cancel()
	}
	p.refresher = debounce.New(wait, p.doRefresh)
}

// RefreshDelay returns the current debounce window.
func (p *Provider) RefreshDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refresher.Wait()
}

// Subscribe registers fn for change notifications. fn receives the
// invalidated node, nil for the whole tree. The returned func unsubscribes.
func (p *Provider) Subscribe(fn func(*Node)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// RevealPaths resolves a chain of descriptors, project first, to the node of
// its last element. Returns nil when some element has no match.
func (p *Provider) RevealPaths(ctx context.Context, chain []jdtls.NodeData) (*Node, error) {
	if len(chain) == 0 {
		return nil, nil
	}
	first := chain[0]
	projects, err := p.RootProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, proj := range projects {
		if proj.data.Path == first.Path && proj.data.Name == first.Name {
			return proj.RevealPaths(ctx, chain[1:])
		}
	}
	return nil, nil
}

// RootProjects returns the project nodes, looking one level below workspace
// nodes when several folders are open.
func (p *Provider) RootProjects(ctx context.Context) ([]*Node, error) {
	roots, err := p.rootNodes(ctx)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 || roots[0].kind == KindProject {
		return roots, nil
	}
	var out []*Node
	for _, ws := range roots {
		projects, err := ws.Children(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, projects...)
	}
	return out, nil
}

func (p *Provider) doRefresh(node *Node) {
	if node == nil {
		p.mu.Lock()
		p.roots = nil
		p.rootsValid = false
		p.gen++
		p.mu.Unlock()
	} else {
		node.Reset()
	}
	p.env.cache.RemoveNodeChildren(node)
	log.Debug().Str("node", nodeID(node)).Msg("explorer: refresh")

	p.mu.Lock()
	fns := make([]func(*Node), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(node)
	}
}

// rootNodes computes the root snapshot once under the lock; callers that
// arrive while it is computed wait and get the same list.
func (p *Provider) rootNodes(ctx context.Context) ([]*Node, error) {
	if err := p.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer p.lock.Release()

	p.mu.Lock()
	if p.rootsValid {
		roots := p.roots
		p.mu.Unlock()
		return roots, nil
	}
	gen := p.gen
	p.mu.Unlock()

	var folders []workspace.Folder
	if p.folders != nil {
		folders = p.folders.Folders()
	}

	roots := []*Node{}
	switch {
	case len(folders) == 1:
		projects, err := p.env.src.GetProjects(ctx, folders[0].URI)
		if err != nil {
			return nil, err
		}
		for _, d := range projects {
			roots = append(roots, newNode(p.env, KindProject, d, nil))
		}
	case len(folders) > 1:
		for _, f := range folders {
			d := jdtls.NodeData{Name: f.Name, URI: f.URI, Path: f.Path(), Kind: jdtls.KindWorkspace}
			roots = append(roots, newNode(p.env, KindWorkspace, d, nil))
		}
	}

	// A full refresh during the computation makes this list stale: hand it
	// to the caller but leave the snapshot invalid.
	p.mu.Lock()
	if p.gen == gen {
		p.roots = roots
		p.rootsValid = true
	}
	p.mu.Unlock()

	log.Debug().Int("folders", len(folders)).Int("roots", len(roots)).Msg("explorer: roots computed")
	if p.onEmpty != nil {
		p.onEmpty(len(roots) == 0)
	}
	return roots, nil
}

func nodeID(n *Node) string {
	if n == nil {
		return rootKey
	}
	return n.ID()
}
