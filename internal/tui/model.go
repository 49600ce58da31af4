// Package tui is the interactive phonebook: a filter box, a draft form and
// the record list, driven by a phonebook.Synchronizer.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/phonebook/internal/models"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/marcus/phonebook/internal/viewmodel"
)

// Focus is the widget receiving key input
type Focus int

const (
	FocusFilter Focus = iota
	FocusName
	FocusNumber
	FocusList
	focusCount
)

// LoadedMsg reports the result of the startup listing
type LoadedMsg struct {
	Err error
}

// OpDoneMsg reports a settled add or delete
type OpDoneMsg struct {
	Op      string // "add" or "delete"
	Outcome phonebook.Outcome
	Err     error
}

// StatusTickMsg fires when the banner shown under Seq should have expired
type StatusTickMsg struct {
	Seq uint64
}

// Model is the Bubble Tea model for the phonebook view
type Model struct {
	Sync      *phonebook.Synchronizer
	Banner    *viewmodel.Banner
	Confirmer *Confirmer

	// Window dimensions
	Width  int
	Height int

	// Inputs
	Filter textinput.Model
	Name   textinput.Model
	Number textinput.Model
	Focus  Focus

	// List selection, an index into the filtered records
	Cursor int

	Loading   bool
	Busy      bool   // an add or delete is in flight
	LoadErr   error  // last listing failure; the list shows "no data yet"
	Rejection string // duplicate-entry notice, cleared on the next key press

	// Open confirmation prompt, nil when none
	Pending *confirmRequest
}

// NewModel wires a model to a synchronizer whose confirmer is c and whose
// notifier is banner.
func NewModel(sync *phonebook.Synchronizer, banner *viewmodel.Banner, c *Confirmer) Model {
	filter := textinput.New()
	filter.Placeholder = "filter by name"
	filter.Prompt = ""
	filter.CharLimit = 100
	filter.Width = 40

	name := textinput.New()
	name.Placeholder = "Arto Hellas"
	name.Prompt = ""
	name.CharLimit = 100
	name.Width = 40

	number := textinput.New()
	number.Placeholder = "040-123456"
	number.Prompt = ""
	number.CharLimit = 40
	number.Width = 40

	m := Model{
		Sync:      sync,
		Banner:    banner,
		Confirmer: c,
		Filter:    filter,
		Name:      name,
		Number:    number,
		Focus:     FocusName,
		Loading:   true,
	}
	m.applyFocus()
	return m
}

// Init starts the listing fetch and begins listening for confirmations
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadCmd()}
	if m.Confirmer != nil {
		cmds = append(cmds, m.Confirmer.wait())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case LoadedMsg:
		m.Loading = false
		m.LoadErr = msg.Err
		if msg.Err != nil {
			slog.Debug("tui: load failed", "err", msg.Err)
		}
		m.clampCursor()
		return m, nil

	case OpDoneMsg:
		return m.handleOpDone(msg)

	case ConfirmRequestMsg:
		req := confirmRequest(msg)
		m.Pending = &req
		return m, m.Confirmer.wait()

	case StatusTickMsg:
		// rendering consults the banner, which has cleared itself by now
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		if m.Pending != nil {
			m.answer(false)
		}
		return m, tea.Quit
	}

	if m.Pending != nil {
		switch key {
		case "y", "Y", "enter":
			m.answer(true)
		case "n", "N", "esc":
			m.answer(false)
		}
		return m, nil
	}

	m.Rejection = ""

	switch key {
	case "tab", "down":
		if key == "tab" || m.Focus != FocusList {
			m.Focus = (m.Focus + 1) % focusCount
			return m, m.applyFocus()
		}
	case "shift+tab", "up":
		if key == "shift+tab" || m.Focus != FocusList {
			m.Focus = (m.Focus + focusCount - 1) % focusCount
			return m, m.applyFocus()
		}
	case "enter":
		if m.Focus == FocusName || m.Focus == FocusNumber {
			return m.submit()
		}
	}

	if m.Focus == FocusList {
		switch key {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Visible())-1 {
				m.Cursor++
			}
		case "d", "delete", "x":
			return m.deleteSelected()
		case "r":
			if !m.Busy {
				// the old status refers to the list being replaced
				m.Banner.Clear()
				m.Loading = true
				return m, m.loadCmd()
			}
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards a message to the focused text input
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.Focus {
	case FocusFilter:
		m.Filter, cmd = m.Filter.Update(msg)
		m.clampCursor()
	case FocusName:
		m.Name, cmd = m.Name.Update(msg)
	case FocusNumber:
		m.Number, cmd = m.Number.Update(msg)
	}
	return m, cmd
}

func (m *Model) applyFocus() tea.Cmd {
	m.Filter.Blur()
	m.Name.Blur()
	m.Number.Blur()
	switch m.Focus {
	case FocusFilter:
		return m.Filter.Focus()
	case FocusName:
		return m.Name.Focus()
	case FocusNumber:
		return m.Number.Focus()
	}
	return nil
}

// Draft returns the pending name/number pair
func (m Model) Draft() models.Draft {
	return models.Draft{
		Name:   strings.TrimSpace(m.Name.Value()),
		Number: strings.TrimSpace(m.Number.Value()),
	}
}

// Visible returns the records matching the filter
func (m Model) Visible() []models.Record {
	return viewmodel.VisibleRecords(m.Sync.Records(), m.Filter.Value())
}

// Selected returns the record under the list cursor
func (m Model) Selected() (models.Record, bool) {
	vis := m.Visible()
	if m.Cursor < 0 || m.Cursor >= len(vis) {
		return models.Record{}, false
	}
	return vis[m.Cursor], true
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.Busy || m.Loading {
		return m, nil
	}
	draft := m.Draft()
	if draft.Blank() {
		m.Rejection = "name is required"
		return m, nil
	}
	m.Busy = true
	s := m.Sync
	return m, func() tea.Msg {
		out, err := s.AddOrReplace(context.Background(), draft)
		return OpDoneMsg{Op: "add", Outcome: out, Err: err}
	}
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if m.Busy {
		return m, nil
	}
	rec, ok := m.Selected()
	if !ok {
		return m, nil
	}
	m.Busy = true
	s := m.Sync
	return m, func() tea.Msg {
		out, err := s.Delete(context.Background(), rec.ID)
		return OpDoneMsg{Op: "delete", Outcome: out, Err: err}
	}
}

func (m Model) handleOpDone(msg OpDoneMsg) (tea.Model, tea.Cmd) {
	m.Busy = false
	m.clampCursor()

	if msg.Err != nil {
		slog.Debug("tui: operation failed", "op", msg.Op, "err", msg.Err)
		if errors.Is(msg.Err, phonebook.ErrDuplicate) || errors.Is(msg.Err, phonebook.ErrInvalidDraft) {
			m.Rejection = msg.Err.Error()
			return m, nil
		}
		// transport failures keep the draft so the user can retry
		m.Banner.Notify(msg.Err.Error(), models.StatusError)
		return m, m.statusTick()
	}

	if msg.Outcome.ClearDraft {
		m.Name.SetValue("")
		m.Number.SetValue("")
	}
	if msg.Outcome.Result == phonebook.ResultDeclined {
		return m, nil
	}
	return m, m.statusTick()
}

// statusTick schedules a redraw for when the current banner expires
func (m Model) statusTick() tea.Cmd {
	seq := m.Banner.Seq()
	return tea.Tick(m.Banner.Delay(), func(time.Time) tea.Msg {
		return StatusTickMsg{Seq: seq}
	})
}

func (m *Model) answer(ok bool) {
	if m.Pending == nil {
		return
	}
	m.Pending.reply <- ok
	m.Pending = nil
}

func (m *Model) clampCursor() {
	n := len(m.Visible())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) loadCmd() tea.Cmd {
	s := m.Sync
	return func() tea.Msg {
		return LoadedMsg{Err: s.Load(context.Background())}
	}
}
