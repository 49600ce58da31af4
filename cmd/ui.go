package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/phonebook/internal/output"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/marcus/phonebook/internal/tui"
	"github.com/marcus/phonebook/internal/viewmodel"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive phonebook",
	Long: `Interactive phonebook with a name filter, an add form and the list of numbers.

Key bindings:
  tab/shift+tab  Switch between filter, name, number and list
  enter          Add the draft (in name or number)
  up/down, j/k   Move the selection (in list)
  d              Delete the selected person
  r              Reload from the server
  y/n            Answer a confirmation prompt
  q, ctrl+c      Quit`,
	GroupID: "views",
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// logs to stderr would tear the alternate screen
		w, err := openLogSink(cmd)
		if err != nil {
			output.Error("open log file: %v", err)
			return err
		}
		uiLog = w
		return setupLogging(cmd, w)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings(cmd)

		banner := viewmodel.NewBanner(s.StatusDelay)
		confirmer := tui.NewConfirmer()
		sync := phonebook.New(newClient(s), confirmer, banner)

		model := tui.NewModel(sync, banner, confirmer)
		p := tea.NewProgram(model, tea.WithAltScreen())
		banner.OnClear(func() { p.Send(tui.StatusTickMsg{}) })

		_, err := p.Run()
		if cerr := uiLog.Close(); cerr != nil {
			output.Warning("close log file: %v", cerr)
		}
		if err != nil {
			return fmt.Errorf("error running phonebook ui: %w", err)
		}
		return nil
	},
}

// uiLog receives logs while the UI owns the terminal
var uiLog io.WriteCloser = nopCloser{io.Discard}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openLogSink opens --log-file for appending, or discards logs when unset.
func openLogSink(cmd *cobra.Command) (io.WriteCloser, error) {
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func init() {
	uiCmd.Flags().String("log-file", "", "write logs to this file while the UI is open")
	rootCmd.AddCommand(uiCmd)
}
