package render

import (
	"fmt"
	"io"
)

// See https://www.gnu.org/software/diffutils/manual/html_node/Hunks.html.
type hunk struct {
	// Location of the hunk (old/new offset and count), rendered as
	// "@@ -15,3 +17,5 @@".
	oldOff   int
	oldCount int
	newOff   int
	newCount int

	lines []string

	// Counts the lines since the last difference. Used to decide when to
	// close a hunk: with N context lines, 2N+1 common lines in a row mean
	// no further difference can belong to this hunk.
	sinceLastDiff int

	context int

	printErr error
}

func newHunk(oldOff, newOff int, backfill []string, context int) *hunk {
	l := len(backfill)
	return &hunk{
		oldOff:   oldOff - l,
		newOff:   newOff - l,
		oldCount: l,
		newCount: l,
		lines:    backfill,
		context:  context,
	}
}

func (h *hunk) appendOld(line string) {
	h.lines = append(h.lines, line)
	h.sinceLastDiff = 0
	h.oldCount++
}

func (h *hunk) appendNew(line string) {
	h.lines = append(h.lines, line)
	h.sinceLastDiff = 0
	h.newCount++
}

func (h *hunk) appendCommon(line string) {
	h.lines = append(h.lines, line)
	h.sinceLastDiff++
	h.oldCount++
	h.newCount++
}

func (h *hunk) isComplete() bool {
	return h.sinceLastDiff >= 2*h.context+1
}

// trim drops trailing common lines beyond the context window and returns
// them so the caller can keep them as context for a possible next hunk.
func (h *hunk) trim() []string {
	if h.sinceLastDiff <= h.context {
		return nil
	}
	excess := h.sinceLastDiff - h.context
	cut := h.lines[len(h.lines)-excess:]
	h.lines = h.lines[:len(h.lines)-excess]
	h.oldCount -= excess
	h.newCount -= excess
	return cut
}

func (h hunk) printTo(w io.Writer, paint func(string) string) error {
	h.print(w, "%s\n", paint(h.location()))
	for _, line := range h.lines {
		h.print(w, "%s\n", paint(line))
	}
	return h.printErr
}

func (h hunk) location() string {
	loc := fmt.Sprintf("@@ -%d", h.oldOff+1)
	if h.oldCount > 1 {
		loc += fmt.Sprintf(",%d", h.oldCount)
	}
	loc += fmt.Sprintf(" +%d", h.newOff+1)
	if h.newCount > 1 {
		loc += fmt.Sprintf(",%d", h.newCount)
	}
	return loc + " @@"
}

func (h *hunk) print(w io.Writer, format string, a ...interface{}) {
	if h.printErr != nil {
		return
	}
	_, h.printErr = fmt.Fprintf(w, format, a...)
}

// contextBuffer holds the most recent common lines in-between hunks. It
// happily overwrites values past its size.
type contextBuffer struct {
	lines []string
	ridx  int
	widx  int
	len   int
	sz    int
}

func newContextBuffer(sz int) *contextBuffer {
	return &contextBuffer{
		lines: make([]string, sz),
		sz:    sz,
	}
}

func (b *contextBuffer) incr(val int) int {
	return (val + 1) % b.sz
}

func (b *contextBuffer) enqueue(line string) {
	if b.sz == 0 {
		return
	}
	if b.len == b.sz {
		b.ridx = b.incr(b.ridx)
	} else {
		b.len++
	}
	b.lines[b.widx] = line
	b.widx = b.incr(b.widx)
}

func (b *contextBuffer) dequeueAll() []string {
	var lines []string
	for b.len > 0 {
		lines = append(lines, b.lines[b.ridx])
		b.ridx = b.incr(b.ridx)
		b.len--
	}
	return lines
}
