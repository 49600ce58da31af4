package cmd

import (
	"github.com/marcus/phonebook/internal/output"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version information",
	GroupID: "system",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output.Info("phonebook %s", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
