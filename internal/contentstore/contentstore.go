// Package contentstore loads site trees from a foomo contentserver.
//
// The whole navigation tree below a root is fetched with a single expanded
// GetNodes request and converted into an immutable sitetree.MemoryTree, so
// planning runs against a consistent snapshot.
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"go.uber.org/zap"

	"github.com/danieljhkim/treepurge/internal/sitetree"
)

// ErrRootNotReturned indicates the contentserver response lacked the requested root.
var ErrRootNotReturned = errors.New("contentserver did not return the root node")

// NodeGetter is the part of the contentserver client the loader needs.
type NodeGetter interface {
	GetNodes(ctx context.Context, env *requests.Env, nodes map[string]*requests.Node) (map[string]*content.Node, error)
}

// Settings selects what is loaded.
type Settings struct {
	// MimeTypes limits the tree to these item types (empty = all)
	MimeTypes []string

	// Dimensions are the contentserver dimensions to query
	Dimensions []string
}

// Loader builds site trees from contentserver navigation nodes.
type Loader struct {
	client   NodeGetter
	settings Settings
	logger   *zap.Logger
}

// New creates a Loader for the contentserver at serverURL.
func New(serverURL string, httpClient *http.Client, settings Settings, logger *zap.Logger) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			serverURL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
	return NewWithClient(client, settings, logger)
}

// NewWithClient creates a Loader over an existing client.
func NewWithClient(client NodeGetter, settings Settings, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		client:   client,
		settings: settings,
		logger:   logger.Named("contentstore"),
	}
}

// LoadTree fetches the tree below rootID.
func (l *Loader) LoadTree(ctx context.Context, rootID string) (*sitetree.MemoryTree, error) {
	env := &requests.Env{
		Dimensions: l.settings.Dimensions,
		Groups:     []string{},
	}

	nodes, err := l.client.GetNodes(ctx, env, map[string]*requests.Node{
		rootID: {
			ID:        rootID,
			MimeTypes: l.settings.MimeTypes,
			Expand:    true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}

	root, ok := nodes[rootID]
	if !ok || root == nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotReturned, rootID)
	}

	list, err := Flatten(root)
	if err != nil {
		return nil, err
	}

	tree, err := sitetree.NewMemoryTree(list)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}

	l.logger.Debug("tree loaded", zap.String("root", rootID), zap.Int("nodes", tree.Len()))
	return tree, nil
}

// Flatten converts a contentserver navigation node and its expanded children
// into site nodes, parents first and children in index order.
//
// The root's slug is its full URI, so resolved URLs equal contentserver URIs.
// Each child's slug is its URI relative to its parent, falling back to the
// last URI segment when the child does not live below the parent's URI.
// Item names serve as both title and navigation label.
func Flatten(root *content.Node) ([]sitetree.Node, error) {
	if root.Item == nil {
		return nil, fmt.Errorf("contentserver node has no item")
	}

	out := []sitetree.Node{toNode(root.Item, "", strings.Trim(root.Item.URI, "/"))}
	if err := flattenChildren(root, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenChildren(parent *content.Node, out *[]sitetree.Node) error {
	for _, id := range parent.Index {
		child, ok := parent.Nodes[id]
		if !ok || child == nil || child.Item == nil {
			return fmt.Errorf("contentserver node %q lists missing child %q", parent.Item.ID, id)
		}
		*out = append(*out, toNode(child.Item, parent.Item.ID, relativeSlug(parent.Item.URI, child.Item.URI)))
		if err := flattenChildren(child, out); err != nil {
			return err
		}
	}
	return nil
}

func toNode(item *content.Item, parentID, slug string) sitetree.Node {
	return sitetree.Node{
		ID:       item.ID,
		ParentID: parentID,
		Slug:     slug,
		Title:    item.Name,
		NavLabel: item.Name,
	}
}

func relativeSlug(parentURI, childURI string) string {
	parent := strings.TrimRight(parentURI, "/") + "/"
	if strings.HasPrefix(childURI, parent) {
		return strings.Trim(strings.TrimPrefix(childURI, parent), "/")
	}
	trimmed := strings.Trim(childURI, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
