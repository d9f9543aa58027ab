package sitetree

import (
	"fmt"
	"strings"
)

// Node is a snapshot of a single page in the site tree.
type Node struct {
	// ID is the stable, opaque page identifier
	ID string `json:"id"`

	// ParentID is the identifier of the parent page (empty for a root)
	ParentID string `json:"parentId,omitempty"`

	// Slug is the URL path segment contributed by this page
	Slug string `json:"slug"`

	// Title is the page title
	Title string `json:"title,omitempty"`

	// NavLabel is the label shown in menus and breadcrumbs
	NavLabel string `json:"navLabel,omitempty"`
}

// IsRoot returns true if the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == ""
}

// Tree provides read access to a consistent site tree snapshot.
type Tree interface {
	// GetNode returns the node with the given identifier.
	// Returns a *NodeNotFoundError if the node does not exist.
	GetNode(id string) (Node, error)

	// GetChildren returns the immediate children of a node in display order.
	GetChildren(id string) ([]Node, error)

	// GetParent returns the parent identifier of a node.
	// The boolean is false when the node is a root.
	GetParent(id string) (string, bool, error)
}

// MemoryTree is an immutable in-memory Tree built from a list of nodes.
type MemoryTree struct {
	nodes    map[string]Node
	children map[string][]string
	order    []string
}

// NewMemoryTree builds a MemoryTree. Children keep the order in which they
// appear in nodes. Parents may be listed after their children.
func NewMemoryTree(nodes []Node) (*MemoryTree, error) {
	t := &MemoryTree{
		nodes:    make(map[string]Node, len(nodes)),
		children: make(map[string][]string),
		order:    make([]string, 0, len(nodes)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("invalid node: empty identifier")
		}
		if _, exists := t.nodes[n.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		t.nodes[n.ID] = n
		t.order = append(t.order, n.ID)
		if n.ParentID != "" {
			t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
		}
	}

	return t, nil
}

// GetNode returns the node with the given identifier.
func (t *MemoryTree) GetNode(id string) (Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, &NodeNotFoundError{ID: id}
	}
	return n, nil
}

// GetChildren returns the immediate children of a node.
func (t *MemoryTree) GetChildren(id string) ([]Node, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, &NodeNotFoundError{ID: id}
	}
	ids := t.children[id]
	out := make([]Node, 0, len(ids))
	for _, childID := range ids {
		out = append(out, t.nodes[childID])
	}
	return out, nil
}

// GetParent returns the parent identifier of a node.
func (t *MemoryTree) GetParent(id string) (string, bool, error) {
	n, ok := t.nodes[id]
	if !ok {
		return "", false, &NodeNotFoundError{ID: id}
	}
	if n.ParentID == "" {
		return "", false, nil
	}
	return n.ParentID, true, nil
}

// Nodes returns all nodes in insertion order.
func (t *MemoryTree) Nodes() []Node {
	out := make([]Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Len returns the number of nodes in the tree.
func (t *MemoryTree) Len() int {
	return len(t.nodes)
}

// Roots returns the nodes without a parent, in insertion order.
func (t *MemoryTree) Roots() []Node {
	var roots []Node
	for _, id := range t.order {
		if n := t.nodes[id]; n.IsRoot() {
			roots = append(roots, n)
		}
	}
	return roots
}

// TopLevelParent follows parent links from node until a root is reached.
// The node itself is returned when it is a root.
func TopLevelParent(tree Tree, node Node) (Node, error) {
	seen := map[string]bool{node.ID: true}
	current := node
	for !current.IsRoot() {
		if seen[current.ParentID] {
			return Node{}, &TreeCycleError{ID: current.ParentID}
		}
		parent, err := tree.GetNode(current.ParentID)
		if err != nil {
			return Node{}, err
		}
		seen[parent.ID] = true
		current = parent
	}
	return current, nil
}

// ResolveURL returns the canonical URL of node: the slugs from the root down
// to node joined by "/", without a leading separator. Empty slugs (typically
// the root's) contribute nothing. The node's own slug is taken from node, not
// from the tree, so a post-change snapshot resolves to its new URL.
func ResolveURL(tree Tree, node Node) (string, error) {
	segments := []string{node.Slug}
	seen := map[string]bool{node.ID: true}
	parentID := node.ParentID
	for parentID != "" {
		if seen[parentID] {
			return "", &TreeCycleError{ID: parentID}
		}
		seen[parentID] = true
		parent, err := tree.GetNode(parentID)
		if err != nil {
			return "", err
		}
		segments = append(segments, parent.Slug)
		parentID = parent.ParentID
	}

	parts := make([]string, 0, len(segments))
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.Trim(segments[i], "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/"), nil
}
