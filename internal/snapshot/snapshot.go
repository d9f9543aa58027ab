// Package snapshot reads and writes content-tree snapshots and change events.
//
// A snapshot is a JSON document {"nodes":[...]} holding every node of a tree
// in insertion order. Files whose name ends in .zst are zstd compressed.
package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/danieljhkim/treepurge/internal/fsops"
	"github.com/danieljhkim/treepurge/internal/planner"
	"github.com/danieljhkim/treepurge/internal/sitetree"
)

// CompressedExt marks zstd-compressed files.
const CompressedExt = ".zst"

// Document is the on-disk snapshot format.
type Document struct {
	Nodes []sitetree.Node `json:"nodes"`
}

// Load reads a snapshot file into a MemoryTree.
func Load(fs fsops.FS, path string) (*sitetree.MemoryTree, error) {
	data, err := readFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a JSON snapshot into a MemoryTree.
func Decode(data []byte) (*sitetree.MemoryTree, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	tree, err := sitetree.NewMemoryTree(doc.Nodes)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return tree, nil
}

// Save writes tree to path atomically.
func Save(fs fsops.FS, path string, tree *sitetree.MemoryTree) error {
	data, err := json.MarshalIndent(Document{Nodes: tree.Nodes()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if isCompressed(path) {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		data = enc.EncodeAll(data, make([]byte, 0, len(data)))
		enc.Close()
	}

	if err := fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// LoadEvent reads a change event file.
func LoadEvent(fs fsops.FS, path string) (planner.ChangeEvent, error) {
	data, err := readFile(fs, path)
	if err != nil {
		return planner.ChangeEvent{}, err
	}
	return DecodeEvent(data)
}

// DecodeEvent parses and validates a JSON change event.
func DecodeEvent(data []byte) (planner.ChangeEvent, error) {
	var event planner.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return planner.ChangeEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return planner.ChangeEvent{}, err
	}
	return event, nil
}

func readFile(fs fsops.FS, path string) ([]byte, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !isCompressed(path) {
		return data, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return out, nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}
