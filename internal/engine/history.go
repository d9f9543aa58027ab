package engine

import (
	"fmt"

	"github.com/danieljhkim/treepurge/internal/journal"
)

// History returns journal records, newest first. limit <= 0 returns all.
func (e *Engine) History(limit int) ([]*journal.Record, error) {
	if e.journal == nil {
		return nil, nil
	}

	records, err := e.journal.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Record returns one journal record.
func (e *Engine) Record(id string) (*journal.Record, error) {
	if e.journal == nil {
		return nil, fmt.Errorf("%w: %s", journal.ErrRecordNotFound, id)
	}

	rec, err := e.journal.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return rec, nil
}
