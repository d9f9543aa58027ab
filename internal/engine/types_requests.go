package engine

import (
	"github.com/danieljhkim/treepurge/internal/planner"
	"github.com/danieljhkim/treepurge/internal/sitetree"
)

// PlanRequest represents a request to preview the plan for an event.
type PlanRequest struct {
	// Event is the change event to plan for
	Event planner.ChangeEvent

	// Tree is the content tree snapshot
	Tree sitetree.Tree
}

// HandleRequest represents a request to handle an event end to end.
type HandleRequest struct {
	// Event is the change event to handle
	Event planner.ChangeEvent

	// Tree is the content tree snapshot
	Tree sitetree.Tree

	// DryRun performs planning only without submitting
	DryRun bool
}

// DescendantsRequest represents a request to list a node's descendant URLs.
type DescendantsRequest struct {
	NodeID string
	Tree   sitetree.Tree
}
