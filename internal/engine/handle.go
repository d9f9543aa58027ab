package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/planner"
)

// Handle processes one change event.
//
// Algorithm steps:
// 1. Validate the event
// 2. Credential gate (closed -> skipped, nothing planned)
// 3. Build the plan (errors abort with nothing submitted)
// 4. No-op plan -> done
// 5. DryRun -> done with the plan
// 6. Submit the plan through the purge client
// 7. Record the outcome in the journal
func (e *Engine) Handle(ctx context.Context, req *HandleRequest) (*HandleResult, error) {
	if err := req.Event.Validate(); err != nil {
		return nil, err
	}
	log := e.logger.With(
		zap.String("event", req.Event.Kind),
		zap.String("node", req.Event.Current.ID),
	)

	if !e.gate.Available() {
		msg := ErrCredentialsUnavailable.Error()
		if r, ok := e.gate.(interface{ Reason() string }); ok && r.Reason() != "" {
			msg = fmt.Sprintf("%s: %s", msg, r.Reason())
		}
		log.Info("purge skipped", zap.String("reason", msg))
		return e.record(req.Event, &HandleResult{Status: journal.StatusSkipped, Message: msg})
	}

	planResult, err := e.Plan(&PlanRequest{Event: req.Event, Tree: req.Tree})
	if err != nil {
		log.Error("planning failed", zap.Error(err))
		return nil, err
	}

	if planResult.Noop() {
		log.Info("nothing to purge")
		return e.record(req.Event, &HandleResult{Status: journal.StatusNoop})
	}

	plan := planResult.Plan
	result := &HandleResult{Plan: plan, Method: planResult.Method}

	if req.DryRun {
		log.Info("dry run", zap.String("method", result.Method), zap.Int("urls", len(plan.URLs)))
		result.Status = journal.StatusDryRun
		return e.record(req.Event, result)
	}

	if err := e.executePlan(ctx, plan); err != nil {
		log.Error("purge failed", zap.String("method", result.Method), zap.Error(err))
		result.Status = journal.StatusFailed
		result.Message = err.Error()
		recorded, recErr := e.record(req.Event, result)
		if recErr != nil {
			return recorded, recErr
		}
		return recorded, fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	log.Info("purge submitted", zap.String("method", result.Method), zap.Int("urls", len(plan.URLs)))
	result.Status = journal.StatusSubmitted
	return e.record(req.Event, result)
}

// record appends the result to the journal and stamps its record ID.
func (e *Engine) record(event planner.ChangeEvent, result *HandleResult) (*HandleResult, error) {
	if e.journal == nil {
		return result, nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return result, fmt.Errorf("failed to fingerprint event: %w", err)
	}
	fingerprint := e.hasher.HashBytes(data)
	now := e.clock.Now()

	rec := &journal.Record{
		ID:          journal.NewRecordID(now, fingerprint),
		HandledAt:   now,
		Fingerprint: fingerprint,
		Event:       event,
		Status:      result.Status,
		Method:      result.Method,
		Plan:        result.Plan,
		Message:     result.Message,
	}
	if err := e.journal.Append(rec); err != nil {
		return result, fmt.Errorf("failed to record outcome: %w", err)
	}

	result.RecordID = rec.ID
	return result, nil
}
