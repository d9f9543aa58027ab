package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/treepurge/internal/engine"
	"github.com/danieljhkim/treepurge/internal/planner"
)

var (
	planEventFile string
	planTree      treeSource
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the purge a change event would trigger",
	Long: `Compute the purge plan for a publish or unpublish event without submitting it.

The event is read from --event. The content tree comes from a snapshot file (--tree)
or is loaded from the contentserver below a root node (--root).`,
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

		event, tree, err := loadEventAndTree(cmd.Context(), rt, planEventFile, planTree)
		if err != nil {
			return err
		}

		result, err := eng.Plan(&engine.PlanRequest{Event: event, Tree: tree})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSection("Purge Plan")
		printPlan(result.Plan)
		return nil
	},
}

// printPlan prints a plan in human-readable form.
func printPlan(plan *planner.PurgePlan) {
	if plan == nil {
		PrintEmptyState("Nothing to purge")
		return
	}

	PrintLabelValue("Method", plan.Method())
	if plan.IsPurgeAll() {
		PrintLabelValue("Reason", plan.Reason)
		return
	}

	PrintSubsection(fmt.Sprintf("%s:", countOf(len(plan.URLs), "URL", "URLs")))
	PrintList(displayURLs(plan.URLs), 1)
}

// displayURLs renders canonical URLs with a leading slash.
func displayURLs(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = "/" + u
	}
	return out
}

func init() {
	planCmd.Flags().StringVarP(&planEventFile, "event", "e", "", "Change event JSON file")
	planCmd.Flags().StringVarP(&planTree.file, "tree", "t", "", "Content tree snapshot file (.json or .json.zst)")
	planCmd.Flags().StringVarP(&planTree.rootID, "root", "r", "", "Load the tree from the contentserver below this node ID")
}
