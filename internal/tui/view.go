package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/phonebook/internal/models"
)

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Phonebook"))
	b.WriteString("\n")
	b.WriteString(m.inputRow("filter shown with:", m.Filter.View(), FocusFilter))

	b.WriteString(sectionStyle.Render("Add a new contact"))
	b.WriteString("\n")
	b.WriteString(m.inputRow("name:", m.Name.View(), FocusName))
	b.WriteString(m.inputRow("number:", m.Number.View(), FocusNumber))

	b.WriteString(sectionStyle.Render("Numbers"))
	b.WriteString("\n")
	b.WriteString(m.renderList())

	if msg, ok := m.Banner.Current(); ok {
		b.WriteString("\n")
		b.WriteString(renderBanner(msg))
		b.WriteString("\n")
	}
	if m.Rejection != "" {
		b.WriteString("\n")
		b.WriteString(rejectionStyle.Render(m.Rejection))
		b.WriteString("\n")
	}
	if m.Pending != nil {
		b.WriteString("\n")
		b.WriteString(confirmStyle.Render(m.Pending.Prompt + "  [y/n]"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) inputRow(label, field string, f Focus) string {
	marker := "  "
	if m.Focus == f {
		marker = "> "
	}
	return marker + labelStyle.Render(label) + field + "\n"
}

func (m Model) renderList() string {
	switch {
	case m.Loading && !m.Sync.Loaded():
		return helpStyle.Render("  loading…") + "\n"
	case m.LoadErr != nil && !m.Sync.Loaded():
		return rejectionStyle.Render("  no data yet: "+m.LoadErr.Error()) + "\n" +
			helpStyle.Render("  press r in the list to retry") + "\n"
	}

	vis := m.Visible()
	if len(vis) == 0 {
		return helpStyle.Render("  (none)") + "\n"
	}

	width := m.Width - 2
	var b strings.Builder
	for i, r := range vis {
		line := r.Name + " " + numberStyle.Render(r.Number)
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		if m.Focus == FocusList && i == m.Cursor {
			line = selectedRowStyle.Render(ansi.Strip(line))
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func renderBanner(msg models.StatusMessage) string {
	if msg.Kind == models.StatusError {
		return errorBanner.Render(msg.Text)
	}
	return successBanner.Render(msg.Text)
}

func (m Model) helpLine() string {
	if m.Pending != nil {
		return "y confirm • n cancel"
	}
	parts := []string{"tab switch field", "enter add"}
	if m.Focus == FocusList {
		parts = []string{"tab switch field", "↑/↓ select", "d delete", "r reload", "q quit"}
	}
	if m.Busy {
		parts = append(parts, "saving…")
	}
	parts = append(parts, "ctrl+c quit")
	line := strings.Join(parts, " • ")
	if m.Width > 0 && lipgloss.Width(line) > m.Width {
		line = ansi.Truncate(line, m.Width, "…")
	}
	return line
}
