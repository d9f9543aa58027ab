package planner

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/treepurge/internal/sitetree"
)

// ErrInvalidEvent indicates a malformed change event.
var ErrInvalidEvent = errors.New("invalid change event")

// Event kind constants
const (
	EventPublished   = "published"
	EventUnpublished = "unpublished"
)

// ChangeEvent is one page's publish or unpublish transition.
type ChangeEvent struct {
	// Kind is the event type: "published" or "unpublished"
	Kind string `json:"kind"`

	// Previous is the snapshot before publishing (nil if the page is new).
	// Unused for unpublish events.
	Previous *sitetree.Node `json:"previous,omitempty"`

	// Current is the snapshot after the transition
	Current sitetree.Node `json:"current"`
}

// NewPublished creates a publish event. previous may be nil for a page that
// had no prior published state.
func NewPublished(previous *sitetree.Node, current sitetree.Node) ChangeEvent {
	var prev *sitetree.Node
	if previous != nil {
		cp := *previous
		prev = &cp
	}
	return ChangeEvent{
		Kind:     EventPublished,
		Previous: prev,
		Current:  current,
	}
}

// NewUnpublished creates an unpublish event.
func NewUnpublished(current sitetree.Node) ChangeEvent {
	return ChangeEvent{
		Kind:    EventUnpublished,
		Current: current,
	}
}

// Validate checks that the event is well formed.
func (e ChangeEvent) Validate() error {
	switch e.Kind {
	case EventPublished, EventUnpublished:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.Current.ID == "" {
		return fmt.Errorf("%w: current node has no identifier", ErrInvalidEvent)
	}
	if e.Previous != nil && e.Previous.ID != "" && e.Previous.ID != e.Current.ID {
		return fmt.Errorf("%w: previous snapshot %q does not match current node %q", ErrInvalidEvent, e.Previous.ID, e.Current.ID)
	}
	return nil
}

// NeedsTree reports whether planning the event reads the content tree.
// Unpublish events and publishes without a meaningful previous snapshot
// are decided from the event alone.
func (e ChangeEvent) NeedsTree() bool {
	return e.Kind == EventPublished && e.Previous != nil && e.Previous.Slug != ""
}
