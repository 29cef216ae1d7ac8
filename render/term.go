package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Terminal color roles.
var (
	termHeader  = lipgloss.NewStyle().Bold(true)
	termAdded   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	termRemoved = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	termChanged = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	termMeta    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Faint(true)
)

// NewTerm is a Text renderer with ANSI colors for the change roles.
func NewTerm(contextLines int) *Text {
	t := NewText(contextLines)
	style := func(s lipgloss.Style) func(string) string {
		return func(line string) string { return s.Render(line) }
	}
	t.paint = painter{
		header:  style(termHeader),
		added:   style(termAdded),
		removed: style(termRemoved),
		changed: style(termChanged),
		meta:    style(termMeta),
	}
	return t
}

// IsTerminal reports whether the file is an interactive terminal, used to
// pick the colored renderer by default.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
