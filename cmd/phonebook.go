package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/marcus/phonebook/internal/config"
	"github.com/marcus/phonebook/internal/models"
	"github.com/marcus/phonebook/internal/output"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/marcus/phonebook/internal/phonebookclient"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newClient builds a resource client from resolved settings
func newClient(s config.Settings) *phonebookclient.Client {
	c := phonebookclient.New(s.ServerURL, s.Resource, s.APIKey)
	if s.Timeout > 0 {
		c.HTTP.Timeout = s.Timeout
	}
	return c
}

// openPhonebook creates a synchronizer for a one-shot command and loads the
// server's listing. Status messages go straight to stdout.
func openPhonebook(ctx context.Context, cmd *cobra.Command) (*phonebook.Synchronizer, error) {
	s := settings(cmd)
	assumeYes, _ := cmd.Flags().GetBool("yes")

	sync := phonebook.New(newClient(s), newPromptConfirmer(assumeYes), printNotifier())
	if err := sync.Load(ctx); err != nil {
		output.Error("cannot reach %s/%s: %v", s.ServerURL, s.Resource, err)
		return nil, err
	}
	return sync, nil
}

func printNotifier() phonebook.Notifier {
	return phonebook.NotifyFunc(func(text string, kind models.StatusKind) {
		output.Status(models.StatusMessage{Text: text, Kind: kind})
	})
}

// promptConfirmer asks yes/no questions on the terminal. Without a terminal
// it declines unless assumeYes is set.
type promptConfirmer struct {
	assumeYes   bool
	interactive func() bool
	ask         func(ctx context.Context, prompt string) (bool, error)
}

func newPromptConfirmer(assumeYes bool) *promptConfirmer {
	return &promptConfirmer{
		assumeYes:   assumeYes,
		interactive: stdinIsTerminal,
		ask:         huhConfirm,
	}
}

func (p *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !p.interactive() {
		output.Warning("%s declined: stdin is not a terminal (use --yes)", prompt)
		return false, nil
	}
	return p.ask(ctx, prompt)
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func huhConfirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// recordWidth is the width records are truncated to, 0 when not on a terminal
func recordWidth() int {
	if !output.IsTerminal() {
		return 0
	}
	return output.TerminalWidth(80)
}
