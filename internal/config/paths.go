// Package config manages treepurge configuration and filesystem paths.
//
// The default root is ~/.treepurge/ containing config.yaml and the journal/
// directory. Settings are read with viper from the config file and from
// TREEPURGE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by treepurge.
type Paths struct {
	// Root is the base directory for all treepurge data (default: ~/.treepurge)
	Root string

	// Journal is the directory containing handled-event records
	Journal string

	// Config is the path to the global config file
	Config string
}

// DefaultPaths returns the default paths for treepurge.
// Paths can be overridden with environment variables:
// - TREEPURGE_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("TREEPURGE_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".treepurge")
	}

	return PathsAt(root), nil
}

// PathsAt returns the paths rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:    root,
		Journal: filepath.Join(root, "journal"),
		Config:  filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Journal} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
