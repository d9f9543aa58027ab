package engine

import (
	"fmt"

	"github.com/danieljhkim/treepurge/internal/planner"
)

// Plan previews the purge plan for an event without contacting the purge
// client, consulting the credential gate or writing the journal.
func (e *Engine) Plan(req *PlanRequest) (*PlanResult, error) {
	if req.Tree == nil && req.Event.NeedsTree() {
		return nil, fmt.Errorf("%w: tree is required", ErrValidation)
	}

	plan, err := e.planner.Plan(req.Event, req.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to plan purge: %w", err)
	}

	result := &PlanResult{Plan: plan}
	if plan != nil {
		result.Method = plan.Method()
	}
	return result, nil
}

// Descendants lists the canonical URLs below a node.
func (e *Engine) Descendants(req *DescendantsRequest) (*DescendantsResult, error) {
	if req.Tree == nil || req.NodeID == "" {
		return nil, fmt.Errorf("%w: tree and node ID are required", ErrValidation)
	}

	urls, err := planner.CollectDescendantURLs(req.NodeID, req.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to collect descendants: %w", err)
	}
	return &DescendantsResult{NodeID: req.NodeID, URLs: urls}, nil
}
