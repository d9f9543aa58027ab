package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/treepurge/internal/journal"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect handled events",
	Long:  `List and inspect the journal of handled change events and their purge outcome.`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List handled events, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		eng, err := newEngine(rt)
		if err != nil {
			return err
		}

		records, err := eng.History(historyLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			if records == nil {
				records = []*journal.Record{}
			}
			return outputJSON(records)
		}

		PrintSection("History")
		if len(records) == 0 {
			PrintEmptyState("No events handled yet")
			return nil
		}

		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				rec.ID,
				rec.HandledAt.Local().Format(time.DateTime),
				rec.Event.Kind,
				rec.Event.Current.ID,
				rec.Status,
				rec.Method,
			})
		}
		PrintTable([]string{"ID", "Handled", "Event", "Node", "Status", "Method"}, rows)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show one handled event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		eng, err := newEngine(rt)
		if err != nil {
			return err
		}

		rec, err := eng.Record(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(rec)
		}

		PrintSection(fmt.Sprintf("Record %s", rec.ID))
		PrintLabelValue("Handled", rec.HandledAt.Local().Format(time.RFC3339))
		PrintLabelValue("Event", rec.Event.Kind)
		PrintLabelValue("Node", rec.Event.Current.ID)
		PrintLabelValueWithColor("Status", rec.Status, statusColor(rec.Status))
		if rec.Message != "" {
			PrintLabelValue("Message", rec.Message)
		}
		if rec.Plan != nil {
			fmt.Println()
			printPlan(rec.Plan)
		}
		return nil
	},
}

func init() {
	historyLsCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of records (0 for all)")

	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyShowCmd)
}
