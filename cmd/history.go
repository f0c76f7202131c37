package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent moves from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		moves, err := appInstance.History.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read move history: %w", err)
		}
		if len(moves) == 0 {
			fmt.Println("No moves recorded yet.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"When", "File", "Folder", "Reply"})
		table.SetBorder(false)
		for _, move := range moves {
			table.Append([]string{
				move.MovedAt.Local().Format(time.DateTime),
				move.FileName,
				move.Folder,
				move.Reply,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of moves to show")
	rootCmd.AddCommand(historyCmd)
}
