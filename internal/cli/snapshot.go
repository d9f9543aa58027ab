package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/treepurge/internal/sitetree"
	"github.com/danieljhkim/treepurge/internal/snapshot"
)

var (
	snapshotRootID string
	snapshotOut    string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and inspect content tree snapshots",
	Long: `Snapshots freeze a content tree in a file so that plans can be computed
offline and reproduced later. Files ending in .zst are zstd compressed.`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save the contentserver tree below a node to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotRootID == "" || snapshotOut == "" {
			return fmt.Errorf("--root and --out are required")
		}

		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = rt.logger.Sync() }()

		loader, err := newLoader(rt)
		if err != nil {
			return err
		}

		tree, err := loader.LoadTree(cmd.Context(), snapshotRootID)
		if err != nil {
			return err
		}

		if err := snapshot.Save(rt.fs, snapshotOut, tree); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{"path": snapshotOut, "nodes": tree.Len()})
		}
		PrintSuccess(fmt.Sprintf("Exported %s to %s", countOf(tree.Len(), "node", "nodes"), snapshotOut))
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the pages and URLs in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		tree, err := snapshot.Load(rt.fs, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(snapshot.Document{Nodes: tree.Nodes()})
		}

		PrintSection(fmt.Sprintf("Snapshot (%s)", countOf(tree.Len(), "node", "nodes")))
		rows, err := outlineRows(tree)
		if err != nil {
			return err
		}
		PrintTable([]string{"Page", "ID", "URL"}, rows)
		return nil
	},
}

// outlineRows lists pages depth-first with indented titles.
func outlineRows(tree *sitetree.MemoryTree) ([][]string, error) {
	var rows [][]string
	var walk func(n sitetree.Node, depth int) error
	walk = func(n sitetree.Node, depth int) error {
		url, err := sitetree.ResolveURL(tree, n)
		if err != nil {
			return err
		}
		label := n.Title
		if label == "" {
			label = n.Slug
		}
		rows = append(rows, []string{strings.Repeat("  ", depth) + label, n.ID, "/" + url})

		children, err := tree.GetChildren(n.ID)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := walk(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range tree.Roots() {
		if err := walk(root, 0); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func init() {
	snapshotExportCmd.Flags().StringVarP(&snapshotRootID, "root", "r", "", "Contentserver node ID to export from")
	snapshotExportCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "Output file (.json or .json.zst)")

	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
}
