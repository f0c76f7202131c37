package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"pixsort/internal/sorter"
)

var (
	sortDryRun bool
	sortLimit  int
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Classify and move the images waiting in the intake folder",
	Long: `Processes every image in the intake folder, one at a time: each image is
sent to the configured vision model together with the list of existing
category folders, and moved into the folder the model names. A
"create_folder:NAME" reply creates the folder and asks once more.

Files the model cannot place stay in the intake folder for a future run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		report, err := appInstance.Sorter.Run(ctx, appInstance.Config.Folders.Intake, sorter.Options{
			DryRun:         sortDryRun,
			Limit:          sortLimit,
			RequestTimeout: appInstance.Config.Classifier.RequestTimeout,
		})
		if err != nil {
			return fmt.Errorf("sort run failed: %w", err)
		}

		if len(report.Outcomes) == 0 {
			fmt.Printf("No image files found in %s\n", appInstance.Config.Folders.Intake)
			return nil
		}

		printReport(report)

		cost, err := appInstance.CostTracker.TotalCost(ctx)
		if err == nil && cost > 0 {
			fmt.Printf("Estimated model cost: $%.6f\n", cost)
		}
		return nil
	},
}

func printReport(report sorter.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"File", "Status", "Folder", "Detail"})
	table.SetBorder(false)

	for _, outcome := range report.Outcomes {
		detail := outcome.Reason
		if outcome.CreatedFolder != "" {
			detail = fmt.Sprintf("created folder %q", outcome.CreatedFolder)
		}
		table.Append([]string{
			outcome.FileName,
			colorStatus(outcome.Status),
			outcome.Folder,
			detail,
		})
	}
	table.Render()

	fmt.Printf("\nRun %s: %d moved, %d skipped, %d folder(s) created in %s\n",
		report.RunID, report.Moved, report.Skipped, report.FoldersCreated,
		report.Elapsed.Round(time.Millisecond))
}

func colorStatus(status sorter.Status) string {
	switch status {
	case sorter.StatusMoved:
		return color.GreenString(string(status))
	case sorter.StatusSkipped:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}

func init() {
	sortCmd.Flags().BoolVar(&sortDryRun, "dry-run", false, "classify only; do not create folders or move files")
	sortCmd.Flags().IntVar(&sortLimit, "limit", 0, "stop after this many files (0 = all)")
	rootCmd.AddCommand(sortCmd)
}
