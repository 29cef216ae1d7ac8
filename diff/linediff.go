package diff

import (
	"strings"

	textdiff "github.com/andreyvit/diff"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/syntax"
)

// Lines computes a line-level diff of the two texts and returns it as a
// file-rooted change tree of Line nodes, one per input line, in document
// order. Unchanged lines are included so a renderer can reconstruct any
// context window; trimming is the renderer's concern.
//
// Line equality runs through the resolved whitespace policy: the texts are
// normalized line by line before diffing, and the marked lines are mapped
// back to the original text by position, so reported content is always the
// raw source.
func Lines(oldText, newText string, opts Options) *changes.Node {
	policy := opts.Resolve()
	root := &changes.Node{Type: changes.Unchanged, Kind: syntax.File}
	if oldText == newText {
		return root
	}

	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")
	marked := textdiff.LineDiffAsLines(normalize(oldLines, policy), normalize(newLines, policy))

	var pendingOld, pendingNew []int // line indexes of the run being paired
	flush := func() {
		n := len(pendingOld)
		if len(pendingNew) < n {
			n = len(pendingNew)
		}
		for i := 0; i < n; i++ {
			o, w := oldLines[pendingOld[i]], newLines[pendingNew[i]]
			root.Child(&changes.Node{
				Type:             changes.Modified,
				Kind:             syntax.Line,
				OldContent:       o,
				NewContent:       w,
				OldLocation:      lineSpan(pendingOld[i], o),
				NewLocation:      lineSpan(pendingNew[i], w),
				WhitespaceIssues: Analyze(&o, &w),
			})
		}
		for _, idx := range pendingOld[n:] {
			line := oldLines[idx]
			root.Child(&changes.Node{
				Type:             changes.Removed,
				Kind:             syntax.Line,
				OldContent:       line,
				OldLocation:      lineSpan(idx, line),
				WhitespaceIssues: Analyze(&line, nil),
			})
		}
		for _, idx := range pendingNew[n:] {
			line := newLines[idx]
			root.Child(&changes.Node{
				Type:             changes.Added,
				Kind:             syntax.Line,
				NewContent:       line,
				NewLocation:      lineSpan(idx, line),
				WhitespaceIssues: Analyze(nil, &line),
			})
		}
		pendingOld, pendingNew = nil, nil
	}

	oldIdx, newIdx := 0, 0
	for _, m := range marked {
		if m == "" {
			continue
		}
		switch m[0] {
		case '-':
			pendingOld = append(pendingOld, oldIdx)
			oldIdx++
		case '+':
			pendingNew = append(pendingNew, newIdx)
			newIdx++
		default:
			flush()
			line := oldLines[oldIdx]
			root.Child(&changes.Node{
				Type:        changes.Unchanged,
				Kind:        syntax.Line,
				OldContent:  line,
				NewContent:  newLines[newIdx],
				OldLocation: lineSpan(oldIdx, line),
				NewLocation: lineSpan(newIdx, newLines[newIdx]),
			})
			oldIdx++
			newIdx++
		}
	}
	flush()

	for _, c := range root.Children {
		if c.Type != changes.Unchanged {
			root.Type = changes.Modified
			break
		}
	}
	return root
}

func normalize(lines []string, p Policy) string {
	if p == Exact {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = Transform(l, p)
	}
	return strings.Join(out, "\n")
}

func lineSpan(idx int, line string) *syntax.Span {
	return &syntax.Span{
		StartLine: idx + 1,
		StartCol:  1,
		EndLine:   idx + 1,
		EndCol:    len(line) + 1,
	}
}
