package explorer

import (
	"strings"
	"sync"
)

// rootKey keys the root-level node list.
const rootKey = "<root>"

// NodeCache indexes materialized child lists by parent identity. Entries
// only go away through RemoveNodeChildren.
type NodeCache struct {
	mu      sync.RWMutex
	entries map[string][]*Node
}

// NewNodeCache returns an empty cache.
func NewNodeCache() *NodeCache {
	return &NodeCache{entries: make(map[string][]*Node)}
}

// SaveNodes records children under their parent's identity. Nodes without a
// parent are root nodes. An empty list records nothing.
func (c *NodeCache) SaveNodes(children []*Node) {
	if len(children) == 0 {
		return
	}
	key := rootKey
	if p := children[0].Parent(); p != nil {
		key = p.ID()
	}
	c.mu.Lock()
	c.entries[key] = children
	c.mu.Unlock()
}

// Get returns the child list saved for the parent identity id.
func (c *NodeCache) Get(id string) ([]*Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes, ok := c.entries[id]
	return nodes, ok
}

// Roots returns the saved root-level list.
func (c *NodeCache) Roots() ([]*Node, bool) {
	return c.Get(rootKey)
}

// RemoveNodeChildren drops the entries of node and of every node below it.
// A nil node clears the whole cache.
func (c *NodeCache) RemoveNodeChildren(node *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node == nil {
		c.entries = make(map[string][]*Node)
		return
	}
	id := node.ID()
	prefix := id + "/"
	for k := range c.entries {
		if k == id || strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// FindByURI returns a cached node whose data has the given URI.
func (c *NodeCache) FindByURI(uri string) *Node {
	if uri == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, nodes := range c.entries {
		for _, n := range nodes {
			if n.Data().URI == uri {
				return n
			}
		}
	}
	return nil
}

// Len returns the number of cached child lists.
func (c *NodeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
