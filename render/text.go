// Package render turns diff results into their output representations:
// plain text, colored terminal text, and JSON.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/randlee/roslyn-diff-sub001/changes"
)

// DefaultContextLines is the number of common lines shown around each
// hunk in line-mode output.
const DefaultContextLines = 3

// A Renderer writes one diff result to a writer.
type Renderer interface {
	Render(w io.Writer, res *changes.DiffResult) error
}

// painter maps output roles to string decorators. The plain renderer uses
// identity painters; the terminal renderer substitutes lipgloss styles.
type painter struct {
	header  func(string) string
	added   func(string) string
	removed func(string) string
	changed func(string) string
	meta    func(string) string
}

func plainPainter() painter {
	id := func(s string) string { return s }
	return painter{header: id, added: id, removed: id, changed: id, meta: id}
}

// Text renders a result as plain text: an indented outline of the change
// tree in structural mode, unified-style hunks in line mode.
type Text struct {
	ContextLines int
	paint        painter
}

func NewText(contextLines int) *Text {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	return &Text{ContextLines: contextLines, paint: plainPainter()}
}

func (t *Text) Render(w io.Writer, res *changes.DiffResult) error {
	if err := t.renderHeader(w, res); err != nil {
		return err
	}
	if res.Stats.Total() == 0 {
		_, err := fmt.Fprintln(w, t.paint.meta("no changes"))
		return err
	}
	for _, root := range res.Changes {
		var err error
		if res.Mode == changes.ModeLines {
			err = t.renderLines(w, root)
		} else {
			err = t.renderOutline(w, root, 0)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Text) renderHeader(w io.Writer, res *changes.DiffResult) error {
	if res.OldPath != "" || res.NewPath != "" {
		if _, err := fmt.Fprintln(w, t.paint.header(fmt.Sprintf("--- %s", res.OldPath))); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, t.paint.header(fmt.Sprintf("+++ %s", res.NewPath))); err != nil {
			return err
		}
	}
	if len(res.AnalyzedTargets) > 0 {
		line := "targets: " + strings.Join(res.AnalyzedTargets, ", ")
		if _, err := fmt.Fprintln(w, t.paint.meta(line)); err != nil {
			return err
		}
	}
	return nil
}

// renderOutline prints the change tree one node per line, indented by
// depth. Unchanged containers print without a marker so the path to each
// change stays visible; unchanged leaves are elided.
func (t *Text) renderOutline(w io.Writer, n *changes.Node, depth int) error {
	if n == nil {
		return nil
	}
	if n.Type == changes.Unchanged && len(n.Children) == 0 {
		return nil
	}
	line := strings.Repeat("  ", depth) + t.describe(n)
	if _, err := fmt.Fprintln(w, t.paintFor(n.Type)(line)); err != nil {
		return err
	}
	for _, caveat := range n.Caveats {
		cl := strings.Repeat("  ", depth+1) + "caveat: " + caveat
		if _, err := fmt.Fprintln(w, t.paint.meta(cl)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := t.renderOutline(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (t *Text) describe(n *changes.Node) string {
	var b strings.Builder
	b.WriteString(marker(n.Type))
	b.WriteByte(' ')
	b.WriteString(n.Kind.String())
	if n.Name != "" {
		b.WriteByte(' ')
		b.WriteString(n.Name)
	}
	if n.Type == changes.Renamed {
		b.WriteString(" (renamed)")
	}
	if n.Impact != changes.ImpactNone {
		b.WriteString("  [")
		b.WriteString(n.Impact.String())
		b.WriteByte(']')
	}
	if len(n.ApplicableTargets) > 0 {
		b.WriteString("  {")
		b.WriteString(strings.Join(n.ApplicableTargets, ", "))
		b.WriteByte('}')
	}
	return b.String()
}

func marker(t changes.Type) string {
	switch t {
	case changes.Added:
		return "+"
	case changes.Removed:
		return "-"
	case changes.Modified:
		return "~"
	case changes.Moved:
		return ">"
	case changes.Renamed:
		return "~"
	}
	return " "
}

func (t *Text) paintFor(typ changes.Type) func(string) string {
	switch typ {
	case changes.Added:
		return t.paint.added
	case changes.Removed:
		return t.paint.removed
	case changes.Modified, changes.Moved, changes.Renamed:
		return t.paint.changed
	}
	return func(s string) string { return s }
}

// renderLines reconstructs the marked line stream from a line-mode root
// and groups it into hunks with surrounding context.
func (t *Text) renderLines(w io.Writer, root *changes.Node) error {
	lines := markedLines(root)

	// While processing lines we're either inside a hunk or in a common
	// segment; common lines between hunks wait in the context buffer.
	var h *hunk
	common := newContextBuffer(t.ContextLines)

	var oldOff, newOff int
	for _, line := range lines {
		if line[0] == ' ' {
			if h != nil {
				h.appendCommon(line)
				if h.isComplete() {
					for _, l := range h.trim() {
						common.enqueue(l)
					}
					if err := h.printTo(w, t.hunkPaint); err != nil {
						return err
					}
					h = nil
				}
			} else {
				common.enqueue(line)
			}
		} else {
			if h == nil {
				h = newHunk(oldOff, newOff, common.dequeueAll(), t.ContextLines)
			}
			if line[0] == '-' {
				h.appendOld(line)
			} else {
				h.appendNew(line)
			}
		}
		switch line[0] {
		case '-':
			oldOff++
		case ' ':
			oldOff++
			newOff++
		case '+':
			newOff++
		}
	}
	if h != nil {
		h.trim()
		return h.printTo(w, t.hunkPaint)
	}
	return nil
}

func (t *Text) hunkPaint(line string) string {
	if line == "" {
		return line
	}
	switch line[0] {
	case '+':
		return t.paint.added(line)
	case '-':
		return t.paint.removed(line)
	case '@':
		return t.paint.meta(line)
	}
	return line
}

// markedLines flattens a line-mode tree back into diff-marked lines.
// Modified lines expand into a removal/addition pair.
func markedLines(root *changes.Node) []string {
	var lines []string
	for _, n := range root.Children {
		switch n.Type {
		case changes.Unchanged:
			lines = append(lines, " "+n.OldContent)
		case changes.Removed:
			lines = append(lines, "-"+n.OldContent)
		case changes.Added:
			lines = append(lines, "+"+n.NewContent)
		case changes.Modified:
			lines = append(lines, "-"+n.OldContent, "+"+n.NewContent)
		}
	}
	return lines
}
