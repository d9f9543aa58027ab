package engine

import (
	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/planner"
)

// PlanResult represents a previewed plan.
type PlanResult struct {
	// Plan is the computed plan (nil when nothing needs purging)
	Plan *planner.PurgePlan `json:"plan"`

	// Method is the purge client operation the plan maps to (empty for no-op)
	Method string `json:"method,omitempty"`
}

// Noop returns true if nothing needs purging.
func (r *PlanResult) Noop() bool {
	return r.Plan == nil
}

// HandleResult represents the outcome of handling an event.
type HandleResult struct {
	// Status is one of the journal.Status constants
	Status string `json:"status"`

	// Plan is the computed plan (nil for no-ops and skips)
	Plan *planner.PurgePlan `json:"plan,omitempty"`

	// Method is the purge client operation used or that would be used
	Method string `json:"method,omitempty"`

	// Message carries the skip reason or submission error
	Message string `json:"message,omitempty"`

	// RecordID is the journal record written (empty if journaling is disabled)
	RecordID string `json:"recordId,omitempty"`
}

// Submitted returns true if the plan reached the purge client successfully.
func (r *HandleResult) Submitted() bool {
	return r.Status == journal.StatusSubmitted
}

// DescendantsResult lists descendant URLs.
type DescendantsResult struct {
	NodeID string   `json:"nodeId"`
	URLs   []string `json:"urls"`
}
