// Package engine provides the orchestration layer for treepurge operations.
//
// The engine sits between the CLI (or MCP server) and the lower-level
// packages. It gates purges on credentials, asks the planner for a purge
// plan, executes the plan through a purge client and records the outcome in
// the journal.
//
// Key components:
//   - Engine: Main orchestrator called by the CLI and the MCP server
//   - Plan: Side-effect free preview of the plan for an event
//   - Handle: Full event handling (gate, plan, submit, record)
//   - History: Access to journal records
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/danieljhkim/treepurge/internal/clock"
	"github.com/danieljhkim/treepurge/internal/hash"
	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/planner"
	"github.com/danieljhkim/treepurge/internal/purge"
)

// CredentialGate reports whether purging is currently permitted.
type CredentialGate interface {
	Available() bool
}

// StaticGate is a CredentialGate with a fixed answer.
type StaticGate bool

// Available returns the gate value.
func (g StaticGate) Available() bool {
	return bool(g)
}

// Engine orchestrates all treepurge operations.
type Engine struct {
	planner *planner.Planner
	client  purge.Client
	gate    CredentialGate
	journal journal.Store
	hasher  hash.Hasher
	clock   clock.Clock
	logger  *zap.Logger
}

// New creates a new Engine with the given dependencies.
// A nil journal disables recording.
func New(
	p *planner.Planner,
	client purge.Client,
	gate CredentialGate,
	store journal.Store,
	hasher hash.Hasher,
	clk clock.Clock,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		planner: p,
		client:  client,
		gate:    gate,
		journal: store,
		hasher:  hasher,
		clock:   clk,
		logger:  logger,
	}
}

// executePlan submits a plan through the purge client.
func (e *Engine) executePlan(ctx context.Context, plan *planner.PurgePlan) error {
	switch plan.Method() {
	case planner.MethodPurgeAll:
		return e.client.PurgeAll(ctx, plan.Reason)
	case planner.MethodPurgeSingle:
		return e.client.PurgeSingle(ctx, plan.URLs[0])
	case planner.MethodPurgeMany:
		return e.client.PurgeMany(ctx, plan.URLs)
	default:
		return fmt.Errorf("unknown purge method: %s", plan.Method())
	}
}
