// Package style decorates the few headings the shell prints. Output that is
// not a terminal is left plain so it stays easy to read from scripts and tests.
package style

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Heading renders s as a heading when enabled, and returns it unchanged otherwise.
func Heading(s string, enabled bool) string {
	if !enabled {
		return s
	}
	return heading.Render(s)
}
