package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/treepurge/internal/engine"
	"github.com/danieljhkim/treepurge/internal/journal"
	"github.com/danieljhkim/treepurge/internal/planner"
)

var (
	applyEventFile string
	applyTree      treeSource
	applyDryRun    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Handle a change event and submit its purge",
	Long: `Plan the purge for a change event and submit it to Cloudflare.

Nothing is submitted when Cloudflare credentials are missing or the site runs on
localhost; the event is recorded as skipped instead. Every handled event is
written to the journal (see 'treepurge history').`,
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

		event, tree, err := loadEventAndTree(cmd.Context(), rt, applyEventFile, applyTree)
		if err != nil {
			return err
		}

		result, err := eng.Handle(cmd.Context(), &engine.HandleRequest{
			Event:  event,
			Tree:   tree,
			DryRun: applyDryRun,
		})
		if err != nil {
			if result != nil && result.Status == journal.StatusFailed && !jsonOutput {
				PrintError(fmt.Sprintf("Purge failed (%s)", result.Method))
				PrintLabelValue("Record", result.RecordID)
			}
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		switch result.Status {
		case journal.StatusSkipped:
			PrintWarning(fmt.Sprintf("Skipped: %s", result.Message))
		case journal.StatusNoop:
			PrintInfo("Nothing to purge")
		case journal.StatusDryRun:
			PrintSection("Dry Run")
			printPlan(result.Plan)
		default:
			PrintSuccess(submittedMessage(result.Plan))
		}
		if result.RecordID != "" {
			PrintLabelValue("Record", result.RecordID)
		}
		return nil
	},
}

func submittedMessage(plan *planner.PurgePlan) string {
	if plan.IsPurgeAll() {
		return "Purged everything"
	}
	return fmt.Sprintf("Purged %s", countOf(len(plan.URLs), "URL", "URLs"))
}

func init() {
	applyCmd.Flags().StringVarP(&applyEventFile, "event", "e", "", "Change event JSON file")
	applyCmd.Flags().StringVarP(&applyTree.file, "tree", "t", "", "Content tree snapshot file (.json or .json.zst)")
	applyCmd.Flags().StringVarP(&applyTree.rootID, "root", "r", "", "Load the tree from the contentserver below this node ID")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show what would be purged without submitting")
}
