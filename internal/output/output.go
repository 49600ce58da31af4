// Package output provides styled terminal output helpers (success, error,
// warning, record listings) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/phonebook/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	numberStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

// Writer is where the helpers print; tests swap it out.
var Writer io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprintln(Writer, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprintln(Writer, errorStyle.Render("ERROR: "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(Writer, warningStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// Info prints an unstyled message
func Info(format string, args ...interface{}) {
	fmt.Fprintln(Writer, fmt.Sprintf(format, args...))
}

// Status prints a status message in its kind's colour
func Status(msg models.StatusMessage) {
	if msg.Kind == models.StatusError {
		fmt.Fprintln(Writer, errorStyle.Render(msg.Text))
		return
	}
	fmt.Fprintln(Writer, successStyle.Render(msg.Text))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(Writer, string(data))
	return nil
}

// FormatRecord renders "name number", truncated to width when width > 0
func FormatRecord(r models.Record, width int) string {
	line := titleStyle.Render(r.Name) + " " + numberStyle.Render(r.Number)
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

// Records prints a heading and one line per record
func Records(recs []models.Record, width int) {
	fmt.Fprintln(Writer, titleStyle.Render("Numbers"))
	if len(recs) == 0 {
		fmt.Fprintln(Writer, subtleStyle.Render("  (none)"))
		return
	}
	for _, r := range recs {
		line := "  " + FormatRecord(r, 0)
		if r.ID != "" {
			line += " " + subtleStyle.Render("["+r.ID.String()+"]")
		}
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		fmt.Fprintln(Writer, line)
	}
}
