package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danieljhkim/treepurge/internal/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the planner over the Model Context Protocol",
	Long: `Run an MCP server exposing the plan_purge, collect_descendants and
purge_history tools. Serves stdio by default, or streamable HTTP with --http.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = rt.logger.Sync() }()

		eng, err := newEngine(rt)
		if err != nil {
			return err
		}

		s := mcp.NewServer(eng, rt.logger)

		if mcpHTTPAddr != "" {
			rt.logger.Info("starting MCP server", zap.String("addr", mcpHTTPAddr))
			return server.NewStreamableHTTPServer(s).Start(mcpHTTPAddr)
		}
		return server.ServeStdio(s)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve streamable HTTP on this address (e.g. ':8080') instead of stdio")
}
