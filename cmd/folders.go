package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List existing category folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		folders, err := appInstance.Library.Folders()
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}
		if len(folders) == 0 {
			fmt.Printf("No category folders yet under %s\n", appInstance.Library.Root())
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Folder", "Files"})
		table.SetBorder(false)
		for _, folder := range folders {
			count, err := appInstance.Library.Count(folder)
			if err != nil {
				return fmt.Errorf("failed to count files in %s: %w", folder, err)
			}
			table.Append([]string{folder, fmt.Sprintf("%d", count)})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(foldersCmd)
}
