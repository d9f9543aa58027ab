// Package journal keeps a history of handled change events.
//
// Each handled event becomes one JSON record written atomically under the
// journal directory. Record identifiers start with a UTC timestamp so that
// file-name order is chronological order.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/danieljhkim/treepurge/internal/fsops"
	"github.com/danieljhkim/treepurge/internal/hash"
	"github.com/danieljhkim/treepurge/internal/planner"
)

// ErrRecordNotFound indicates no journal record exists for an identifier.
var ErrRecordNotFound = errors.New("journal record not found")

// Record status constants
const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusNoop      = "noop"
	StatusDryRun    = "dry_run"
)

const recordExt = ".json"

// Record is the outcome of handling one change event.
type Record struct {
	// ID is the record identifier (timestamp + event fingerprint)
	ID string `json:"id"`

	// HandledAt is when the event was handled
	HandledAt time.Time `json:"handledAt"`

	// Fingerprint is the SHA-256 digest of the event
	Fingerprint string `json:"fingerprint"`

	// Event is the change event that was handled
	Event planner.ChangeEvent `json:"event"`

	// Status is one of the Status constants
	Status string `json:"status"`

	// Method is the purge client operation used (empty when nothing was submitted)
	Method string `json:"method,omitempty"`

	// Plan is the computed plan (nil for no-ops and skips)
	Plan *planner.PurgePlan `json:"plan,omitempty"`

	// Message carries the skip reason or the submission error
	Message string `json:"message,omitempty"`
}

// NewRecordID builds a record identifier from the handling time and event fingerprint.
func NewRecordID(handledAt time.Time, fingerprint string) string {
	return handledAt.UTC().Format("20060102T150405.000000000Z") + "-" + hash.Short(fingerprint)
}

// Store persists journal records.
type Store interface {
	// Append writes a new record.
	Append(rec *Record) error

	// Load reads the record with the given identifier.
	// Returns ErrRecordNotFound if it doesn't exist.
	Load(id string) (*Record, error)

	// List returns all records, newest first.
	List() ([]*Record, error)
}

// FileStore implements Store using one JSON file per record.
type FileStore struct {
	fs  fsops.FS
	dir string
}

// NewFileStore creates a new FileStore rooted at dir.
func NewFileStore(fs fsops.FS, dir string) *FileStore {
	return &FileStore{
		fs:  fs,
		dir: dir,
	}
}

// Append writes a new record atomically.
func (s *FileStore) Append(rec *Record) error {
	if err := s.fs.ValidateIdentifier(rec.ID); err != nil {
		return fmt.Errorf("invalid record ID: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path(rec.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write journal record: %w", err)
	}

	return nil
}

// Load reads the record with the given identifier.
func (s *FileStore) Load(id string) (*Record, error) {
	if err := s.fs.ValidateIdentifier(id); err != nil {
		return nil, fmt.Errorf("invalid record ID: %w", err)
	}

	data, err := s.fs.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to read journal record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal record: %w", err)
	}

	return &rec, nil
}

// List returns all records, newest first.
func (s *FileStore) List() ([]*Record, error) {
	names, err := s.fs.ListFiles(s.dir, recordExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}

	records := make([]*Record, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		rec, err := s.Load(strings.TrimSuffix(names[i], recordExt))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}
