package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcus/phonebook/internal/input"
	"github.com/marcus/phonebook/internal/output"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/marcus/phonebook/internal/suggest"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <name|id>...",
	Aliases: []string{"rm"},
	Short:   "Delete people from the phonebook",
	Long: `Deletes people by name or id, asking for confirmation of each.

An argument of - reads one name per line from stdin and @file reads them from
a file. Stdin is then no longer a terminal, so combine it with --yes.`,
	Example: `  phonebook delete "Arto Hellas"
  phonebook delete --yes @leavers.txt`,
	GroupID: "core",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := input.ExpandArgs(args, cmd.InOrStdin())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		sync, err := openPhonebook(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		return runDelete(cmd.Context(), sync, refs)
	},
}

// runDelete deletes each reference in turn, carrying on past failures.
// The last error is returned.
func runDelete(ctx context.Context, sync *phonebook.Synchronizer, refs []string) error {
	var lastErr error
	for _, ref := range refs {
		rec, ok := sync.FindByNameOrID(ref)
		if !ok {
			output.Error("%s: %v", ref, phonebook.ErrUnknownRecord)
			if similar := suggest.Names(ref, names(sync), 3); len(similar) > 0 {
				output.Info("Did you mean: %s?", strings.Join(similar, ", "))
			}
			lastErr = fmt.Errorf("%s: %w", ref, phonebook.ErrUnknownRecord)
			continue
		}

		out, err := sync.Delete(ctx, rec.ID)
		if err != nil {
			output.Error("failed to delete %s: %v", rec.Name, err)
			lastErr = err
			continue
		}
		if out.Result == phonebook.ResultDeclined {
			output.Info("Kept %s", rec.Name)
		}
	}
	return lastErr
}

func names(sync *phonebook.Synchronizer) []string {
	recs := sync.Records()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
