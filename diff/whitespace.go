package diff

import (
	"fmt"
	"strings"

	"github.com/randlee/roslyn-diff-sub001/changes"
)

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// LeadingRun returns the leading whitespace run of the line.
func LeadingRun(line string) string {
	i := 0
	for i < len(line) && isBlank(line[i]) {
		i++
	}
	return line[:i]
}

// TrailingRun returns the trailing whitespace run of the line. A line that
// is entirely whitespace counts as one leading run and no trailing run.
func TrailingRun(line string) string {
	if strings.TrimLeft(line, " \t") == "" {
		return ""
	}
	i := len(line)
	for i > 0 && isBlank(line[i-1]) {
		i--
	}
	return line[i:]
}

// VisualWidth computes the on-screen width of a leading whitespace run:
// each tab advances to the next multiple of tabWidth. A non-positive
// tabWidth is an input error.
func VisualWidth(run string, tabWidth int) (int, error) {
	if tabWidth <= 0 {
		return 0, fmt.Errorf("tab width must be positive, got %d", tabWidth)
	}
	w := 0
	for i := 0; i < len(run); i++ {
		if run[i] == '\t' {
			w = (w/tabWidth + 1) * tabWidth
		} else {
			w++
		}
	}
	return w, nil
}

func mixed(run string) bool {
	return strings.ContainsRune(run, ' ') && strings.ContainsRune(run, '\t')
}

// Analyze inspects a pair of lines for whitespace findings. A nil side means
// the line is absent (an added or removed line); the pairwise checks then
// stay silent and only the present side is checked for mixed indentation.
func Analyze(oldLine, newLine *string) changes.WhitespaceIssues {
	var issues changes.WhitespaceIssues
	if oldLine != nil && newLine != nil {
		if LeadingRun(*oldLine) != LeadingRun(*newLine) {
			issues |= changes.IndentationChanged
		}
		if TrailingRun(*oldLine) != TrailingRun(*newLine) {
			issues |= changes.TrailingWhitespace
		}
	}
	for _, line := range []*string{oldLine, newLine} {
		if line != nil && mixed(LeadingRun(*line)) {
			issues |= changes.MixedTabsSpaces
		}
	}
	return issues
}

// dominantEnding reports the prevailing end-of-line style of a text: "crlf",
// "lf", or "" when the text has no line endings at all.
func dominantEnding(text string) string {
	crlf := strings.Count(text, "\r\n")
	lf := strings.Count(text, "\n") - crlf
	switch {
	case crlf == 0 && lf == 0:
		return ""
	case crlf >= lf:
		return "crlf"
	default:
		return "lf"
	}
}

// LineEndingsChanged reports whether the dominant end-of-line style differs
// between the two texts. Two texts without any line endings report no
// change; an empty text against a line-ending-bearing one reports a change.
func LineEndingsChanged(oldText, newText string) bool {
	return dominantEnding(oldText) != dominantEnding(newText)
}
