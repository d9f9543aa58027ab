package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/danieljhkim/treepurge/internal/clock"
	"github.com/danieljhkim/treepurge/internal/config"
	"github.com/danieljhkim/treepurge/internal/contentstore"
	"github.com/danieljhkim/treepurge/internal/engine"
	"github.com/danieljhkim/treepurge/internal/fsops"
	"github.com/danieljhkim/treepurge/internal/hash"
	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/logging"
	"github.com/danieljhkim/treepurge/internal/planner"
	"github.com/danieljhkim/treepurge/internal/purge"
	"github.com/danieljhkim/treepurge/internal/sitetree"
	"github.com/danieljhkim/treepurge/internal/snapshot"
)

// runtime bundles what every command needs.
type runtime struct {
	paths  *config.Paths
	cfg    *config.Config
	logger *zap.Logger
	fs     fsops.FS
}

// loadRuntime resolves paths, reads the configuration and builds the logger.
func loadRuntime() (*runtime, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := config.Load(paths, configFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	return &runtime{
		paths:  paths,
		cfg:    cfg,
		logger: logger,
		fs:     fsops.NewRealFS(),
	}, nil
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(rt *runtime) (*engine.Engine, error) {
	p, err := newPlanner(rt.cfg.Planner)
	if err != nil {
		return nil, err
	}

	cf := rt.cfg.Cloudflare
	client := purge.NewCloudflare(purge.CloudflareSettings{
		BaseURL:     cf.BaseURL,
		ZoneID:      cf.ZoneID,
		APIToken:    cf.APIToken,
		APIEmail:    cf.APIEmail,
		APIKey:      cf.APIKey,
		SiteURL:     rt.cfg.Site.BaseURL,
		BatchSize:   rt.cfg.Purge.BatchSize,
		Concurrency: rt.cfg.Purge.Concurrency,
	}, &http.Client{Timeout: rt.cfg.Purge.Timeout}, rt.logger)

	return engine.New(
		p,
		client,
		rt.cfg.Credentials(),
		journal.NewFileStore(rt.fs, rt.paths.Journal),
		hash.NewSHA256Hasher(),
		clock.RealClock{},
		rt.logger,
	), nil
}

func newPlanner(cfg config.PlannerConfig) (*planner.Planner, error) {
	detection, err := planner.ParseRootDetection(cfg.RootDetection)
	if err != nil {
		return nil, fmt.Errorf("invalid planner.root_detection: %w", err)
	}
	scope, err := planner.ParseDescendantScope(cfg.DescendantScope)
	if err != nil {
		return nil, fmt.Errorf("invalid planner.descendant_scope: %w", err)
	}
	return planner.New(
		planner.WithRootDetection(detection),
		planner.WithDescendantScope(scope),
	), nil
}

// newLoader creates a contentserver tree loader from the configuration.
func newLoader(rt *runtime) (*contentstore.Loader, error) {
	cs := rt.cfg.ContentServer
	if cs.URL == "" {
		return nil, errors.New("contentserver.url is not configured")
	}
	return contentstore.New(cs.URL, &http.Client{Timeout: rt.cfg.Purge.Timeout}, contentstore.Settings{
		MimeTypes:  cs.MimeTypes,
		Dimensions: cs.Dimensions,
	}, rt.logger), nil
}

// treeSource is the --tree / --root flag pair.
type treeSource struct {
	file   string
	rootID string
}

// load returns the tree named by the flags. A nil tree is returned when
// neither flag is set and optional is true.
func (s treeSource) load(ctx context.Context, rt *runtime, optional bool) (sitetree.Tree, error) {
	switch {
	case s.file != "" && s.rootID != "":
		return nil, errors.New("--tree and --root are mutually exclusive")
	case s.file != "":
		return snapshot.Load(rt.fs, s.file)
	case s.rootID != "":
		loader, err := newLoader(rt)
		if err != nil {
			return nil, err
		}
		return loader.LoadTree(ctx, s.rootID)
	case optional:
		return nil, nil
	default:
		return nil, errors.New("either --tree or --root is required")
	}
}

// loadEventAndTree reads the event file and the tree it is planned against.
// Events decided without the tree (unpublish, first publish) need no tree.
func loadEventAndTree(ctx context.Context, rt *runtime, eventFile string, src treeSource) (planner.ChangeEvent, sitetree.Tree, error) {
	if eventFile == "" {
		return planner.ChangeEvent{}, nil, errors.New("--event is required")
	}
	event, err := snapshot.LoadEvent(rt.fs, eventFile)
	if err != nil {
		return planner.ChangeEvent{}, nil, err
	}

	tree, err := src.load(ctx, rt, !event.NeedsTree())
	if err != nil {
		return planner.ChangeEvent{}, nil, err
	}
	return event, tree, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
