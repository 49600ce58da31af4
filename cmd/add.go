package cmd

import (
	"context"
	"strings"

	"github.com/marcus/phonebook/internal/models"
	"github.com/marcus/phonebook/internal/output"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <name> [number]",
	Short: "Add a person, or change the number of an existing one",
	Long: `Adds a person to the phonebook. If the name is already present with a
different number you are asked whether to replace it.`,
	Example: `  phonebook add "Arto Hellas" 040-123456
  phonebook add --yes "Arto Hellas" 09-999`,
	GroupID: "core",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft := models.Draft{Name: strings.TrimSpace(args[0])}
		if len(args) > 1 {
			draft.Number = strings.TrimSpace(args[1])
		}
		sync, err := openPhonebook(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		return runAdd(cmd.Context(), sync, draft)
	},
}

func runAdd(ctx context.Context, sync *phonebook.Synchronizer, draft models.Draft) error {
	out, err := sync.AddOrReplace(ctx, draft)
	if err != nil {
		output.Error("%v", err)
		return err
	}

	// a stale record has been dropped and reported; that settles it
	if out.Result == phonebook.ResultDeclined {
		output.Info("No changes made")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(addCmd)
}
