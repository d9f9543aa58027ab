// Package mcp exposes the planner to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/danieljhkim/treepurge/internal/engine"
	"github.com/danieljhkim/treepurge/internal/snapshot"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// PlanPurgeRequest holds the plan_purge arguments. Tree may be empty when
// the event is decided without it.
type PlanPurgeRequest struct {
	Event string `json:"event"` // change event JSON
	Tree  string `json:"tree"`  // snapshot JSON {"nodes":[...]}
}

// CollectDescendantsRequest holds the collect_descendants arguments.
type CollectDescendantsRequest struct {
	Tree   string `json:"tree"`    // snapshot JSON {"nodes":[...]}
	NodeID string `json:"node_id"` // node whose descendants are listed
}

// HistoryRequest holds the purge_history arguments.
type HistoryRequest struct {
	Limit float64 `json:"limit"` // max records, 0 for all
}

// NewServer creates an MCP server with the plan_purge, collect_descendants
// and purge_history tools.
func NewServer(eng *engine.Engine, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mcp")

	s := server.NewMCPServer(
		"treepurge",
		Version,
		server.WithToolCapabilities(false),
	)

	planTool := mcp.NewTool("plan_purge",
		mcp.WithDescription("Compute the CDN purge plan for a page publish or unpublish event against a content tree snapshot"),
		mcp.WithString("event",
			mcp.Required(),
			mcp.Description(`Change event JSON, e.g. {"kind":"published","previous":{...},"current":{"id":"a","parentId":"root","slug":"products","title":"Products","navLabel":"Products"}}`),
		),
		mcp.WithString("tree",
			mcp.Description(`Content tree JSON: {"nodes":[{"id":"root"},{"id":"a","parentId":"root","slug":"products"}]}. Required unless the event is an unpublish or a first publish`),
		),
	)
	s.AddTool(planTool, mcp.NewTypedToolHandler(getPlanPurgeHandler(eng, logger)))

	descendantsTool := mcp.NewTool("collect_descendants",
		mcp.WithDescription("List the canonical URLs of every page below a node"),
		mcp.WithString("tree",
			mcp.Required(),
			mcp.Description(`Content tree JSON: {"nodes":[...]}`),
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("Identifier of the node whose descendants are listed"),
		),
	)
	s.AddTool(descendantsTool, mcp.NewTypedToolHandler(getCollectDescendantsHandler(eng)))

	historyTool := mcp.NewTool("purge_history",
		mcp.WithDescription("List recently handled events and their purge outcome, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records (default all)"),
		),
	)
	s.AddTool(historyTool, mcp.NewTypedToolHandler(getHistoryHandler(eng)))

	return s
}

func getPlanPurgeHandler(eng *engine.Engine, logger *zap.Logger) func(ctx context.Context, request mcp.CallToolRequest, args PlanPurgeRequest) (*mcp.CallToolResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, request mcp.CallToolRequest, args PlanPurgeRequest) (*mcp.CallToolResult, error) {
		if args.Event == "" {
			return mcp.NewToolResultError("event is required"), nil
		}

		event, err := snapshot.DecodeEvent([]byte(args.Event))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid event: %v", err)), nil
		}

		req := &engine.PlanRequest{Event: event}
		switch {
		case args.Tree != "":
			tree, err := snapshot.Decode([]byte(args.Tree))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid tree: %v", err)), nil
			}
			req.Tree = tree
		case event.NeedsTree():
			return mcp.NewToolResultError("tree is required"), nil
		}

		result, err := eng.Plan(req)
		if err != nil {
			logger.Warn("plan_purge failed", zap.String("node", event.Current.ID), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("failed to plan purge: %v", err)), nil
		}

		return jsonResult(result)
	}
}

func getCollectDescendantsHandler(eng *engine.Engine) func(ctx context.Context, request mcp.CallToolRequest, args CollectDescendantsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args CollectDescendantsRequest) (*mcp.CallToolResult, error) {
		if args.NodeID == "" {
			return mcp.NewToolResultError("node_id is required"), nil
		}

		tree, err := snapshot.Decode([]byte(args.Tree))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid tree: %v", err)), nil
		}

		result, err := eng.Descendants(&engine.DescendantsRequest{NodeID: args.NodeID, Tree: tree})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to collect descendants: %v", err)), nil
		}

		return jsonResult(result)
	}
}

func getHistoryHandler(eng *engine.Engine) func(ctx context.Context, request mcp.CallToolRequest, args HistoryRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args HistoryRequest) (*mcp.CallToolResult, error) {
		records, err := eng.History(int(args.Limit))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list history: %v", err)), nil
		}
		return jsonResult(records)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
