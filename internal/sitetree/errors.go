package sitetree

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound indicates the tree has no node for a referenced identifier.
	ErrNodeNotFound = errors.New("node not found")

	// ErrTreeCycle indicates the parent/child relation loops back on itself.
	ErrTreeCycle = errors.New("tree cycle detected")

	// ErrDuplicateNode indicates a snapshot lists the same identifier twice.
	ErrDuplicateNode = errors.New("duplicate node")
)

// NodeNotFoundError reports which identifier could not be resolved.
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("%v: %q", ErrNodeNotFound, e.ID)
}

func (e *NodeNotFoundError) Unwrap() error {
	return ErrNodeNotFound
}

// TreeCycleError reports the node at which a walk revisited itself.
type TreeCycleError struct {
	ID string
}

func (e *TreeCycleError) Error() string {
	return fmt.Sprintf("%v at node %q", ErrTreeCycle, e.ID)
}

func (e *TreeCycleError) Unwrap() error {
	return ErrTreeCycle
}
