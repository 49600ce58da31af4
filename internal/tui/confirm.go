package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmRequest is a pending yes/no question and the channel its
// answer goes back on.
type confirmRequest struct {
	Prompt string
	reply  chan bool
}

// ConfirmRequestMsg opens the confirmation prompt.
type ConfirmRequestMsg confirmRequest

// Confirmer bridges the synchronizer's blocking Confirm call and the
// event loop: the operation goroutine waits while the model shows a prompt.
type Confirmer struct {
	requests chan confirmRequest
}

// NewConfirmer creates a confirmer with no pending requests.
func NewConfirmer() *Confirmer {
	return &Confirmer{requests: make(chan confirmRequest)}
}

// Confirm blocks until the user answers or ctx is done.
func (c *Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{Prompt: prompt, reply: make(chan bool, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// wait delivers the next confirmation request to the model.
func (c *Confirmer) wait() tea.Cmd {
	return func() tea.Msg {
		return ConfirmRequestMsg(<-c.requests)
	}
}
