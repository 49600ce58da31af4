package cmd

import (
	"github.com/marcus/phonebook/internal/output"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/marcus/phonebook/internal/viewmodel"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List numbers, optionally filtered by name",
	GroupID: "core",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sync, err := openPhonebook(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		jsonOut, _ := cmd.Flags().GetBool("json")
		return runList(sync, filter, jsonOut)
	},
}

func runList(sync *phonebook.Synchronizer, filter string, jsonOut bool) error {
	recs := viewmodel.VisibleRecords(sync.Records(), filter)
	if jsonOut {
		return output.JSON(recs)
	}
	output.Records(recs, recordWidth())
	return nil
}

func init() {
	listCmd.Flags().StringP("filter", "f", "", "show only names containing this text (case-insensitive)")
	listCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}
