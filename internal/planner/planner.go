package planner

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/treepurge/internal/sitetree"
)

// Full-purge reasons.
const (
	ReasonUnpublished = "a page was unpublished; every cached page may link to it, so everything was purged"
	reasonCritical    = "a critical element of this page changed (%s); everything was purged"
)

// RootDetection selects how the planner decides that a page is its own
// top-level parent.
type RootDetection string

const (
	// RootBySlug treats the page as top-level when its slug equals the
	// top-level parent's slug.
	RootBySlug RootDetection = "slug"

	// RootByIdentity treats the page as top-level only when it is the
	// top-level parent itself.
	RootByIdentity RootDetection = "identity"
)

// DescendantScope selects whose descendants are purged for a non-critical
// change.
type DescendantScope string

const (
	// ScopeNode purges the descendants of the changed page.
	ScopeNode DescendantScope = "node"

	// ScopeSection purges every page below the changed page's top-level parent.
	ScopeSection DescendantScope = "section"
)

// ParseRootDetection parses a RootDetection name.
func ParseRootDetection(s string) (RootDetection, error) {
	switch RootDetection(s) {
	case RootBySlug, RootByIdentity:
		return RootDetection(s), nil
	case "":
		return RootBySlug, nil
	default:
		return "", fmt.Errorf("unknown root detection %q (want slug or identity)", s)
	}
}

// ParseDescendantScope parses a DescendantScope name.
func ParseDescendantScope(s string) (DescendantScope, error) {
	switch DescendantScope(s) {
	case ScopeNode, ScopeSection:
		return DescendantScope(s), nil
	case "":
		return ScopeNode, nil
	default:
		return "", fmt.Errorf("unknown descendant scope %q (want node or section)", s)
	}
}

// Planner maps change events to purge plans.
type Planner struct {
	rootDetection RootDetection
	scope         DescendantScope
}

// Option configures a Planner.
type Option func(*Planner)

// WithRootDetection sets how top-level pages are recognized.
func WithRootDetection(d RootDetection) Option {
	return func(p *Planner) { p.rootDetection = d }
}

// WithDescendantScope sets whose descendants are collected.
func WithDescendantScope(s DescendantScope) Option {
	return func(p *Planner) { p.scope = s }
}

// New creates a Planner. The defaults are RootBySlug and ScopeNode.
func New(opts ...Option) *Planner {
	p := &Planner{
		rootDetection: RootBySlug,
		scope:         ScopeNode,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan computes the purge plan for event against tree.
// It returns nil with a nil error when nothing needs purging.
func (p *Planner) Plan(event ChangeEvent, tree sitetree.Tree) (*PurgePlan, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if event.Kind == EventUnpublished {
		return NewPurgeAll(ReasonUnpublished), nil
	}
	return p.planPublished(event, tree)
}

// Algorithm steps:
// 1. Bail out if there is no meaningful previous snapshot (new page)
// 2. Resolve the top-level parent (surfaces cycles and missing nodes)
// 3. Critical field changed -> purge everything
// 4. Collect the page URL, plus descendants unless the page is top-level
func (p *Planner) planPublished(event ChangeEvent, tree sitetree.Tree) (*PurgePlan, error) {
	previous := event.Previous
	if previous == nil || previous.Slug == "" {
		return nil, nil
	}
	current := event.Current

	if _, err := tree.GetNode(current.ID); err != nil {
		return nil, fmt.Errorf("failed to load published node: %w", err)
	}

	top, err := sitetree.TopLevelParent(tree, current)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve top-level parent: %w", err)
	}

	if changed := criticalChanges(*previous, current); len(changed) > 0 {
		return NewPurgeAll(fmt.Sprintf(reasonCritical, strings.Join(changed, ", "))), nil
	}

	urls := newURLSet()
	own, err := sitetree.ResolveURL(tree, current)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page URL: %w", err)
	}
	urls.add(own)

	if !p.isTopLevel(current, top) {
		from := current.ID
		if p.scope == ScopeSection {
			from = top.ID
		}
		descendants, err := CollectDescendantURLs(from, tree)
		if err != nil {
			return nil, err
		}
		urls.add(descendants...)
	}

	return NewPurgeURLs(urls.sorted()...)
}

func (p *Planner) isTopLevel(current, top sitetree.Node) bool {
	if p.rootDetection == RootByIdentity {
		return current.ID == top.ID
	}
	return current.Slug == top.Slug
}

// criticalChanges lists the critical fields that differ between snapshots.
func criticalChanges(previous, current sitetree.Node) []string {
	var changed []string
	if previous.Slug != current.Slug {
		changed = append(changed, "slug")
	}
	if previous.NavLabel != current.NavLabel {
		changed = append(changed, "navigation label")
	}
	if previous.Title != current.Title {
		changed = append(changed, "title")
	}
	return changed
}

// CollectDescendantURLs returns the canonical URLs of every descendant of
// nodeID, excluding nodeID itself. The walk is depth-first and expands
// internal nodes before recording their own URL. Visiting a node twice is
// reported as a *sitetree.TreeCycleError.
func CollectDescendantURLs(nodeID string, tree sitetree.Tree) ([]string, error) {
	if _, err := tree.GetNode(nodeID); err != nil {
		return nil, fmt.Errorf("failed to load node: %w", err)
	}

	c := &collector{
		tree:    tree,
		visited: map[string]bool{nodeID: true},
		urls:    newURLSet(),
	}
	if err := c.walk(nodeID); err != nil {
		return nil, err
	}
	return c.urls.sorted(), nil
}

type collector struct {
	tree    sitetree.Tree
	visited map[string]bool
	urls    *urlSet
}

func (c *collector) walk(parentID string) error {
	children, err := c.tree.GetChildren(parentID)
	if err != nil {
		return fmt.Errorf("failed to list children of %q: %w", parentID, err)
	}

	for _, child := range children {
		if c.visited[child.ID] {
			return &sitetree.TreeCycleError{ID: child.ID}
		}
		c.visited[child.ID] = true

		internal, err := IsInternalNode(child.ID, c.tree)
		if err != nil {
			return err
		}
		if internal {
			if err := c.walk(child.ID); err != nil {
				return err
			}
		}

		url, err := sitetree.ResolveURL(c.tree, child)
		if err != nil {
			return fmt.Errorf("failed to resolve URL of %q: %w", child.ID, err)
		}
		c.urls.add(url)
	}

	return nil
}

// IsInternalNode returns true if the node has at least one child.
func IsInternalNode(nodeID string, tree sitetree.Tree) (bool, error) {
	children, err := tree.GetChildren(nodeID)
	if err != nil {
		return false, fmt.Errorf("failed to list children of %q: %w", nodeID, err)
	}
	return len(children) > 0, nil
}
