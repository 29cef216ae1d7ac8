// Package changes defines the change tree produced by the differs and
// consumed by the classifier and the renderers.
package changes

import (
	"fmt"

	"github.com/randlee/roslyn-diff-sub001/syntax"
)

// Type says what happened to a node between the two versions.
type Type int

const (
	Unchanged Type = iota
	Added
	Removed
	Modified
	Moved
	Renamed
)

var typeNames = map[Type]string{
	Unchanged: "unchanged",
	Added:     "added",
	Removed:   "removed",
	Modified:  "modified",
	Moved:     "moved",
	Renamed:   "renamed",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Impact is the classifier's verdict on a change's API compatibility.
// ImpactNone marks a node the classifier has not categorized (unchanged
// containers).
type Impact int

const (
	ImpactNone Impact = iota
	FormattingOnly
	NonBreaking
	BreakingInternalAPI
	BreakingPublicAPI
)

var impactNames = map[Impact]string{
	ImpactNone:          "",
	FormattingOnly:      "formatting-only",
	NonBreaking:         "non-breaking",
	BreakingInternalAPI: "breaking-internal-api",
	BreakingPublicAPI:   "breaking-public-api",
}

func (i Impact) String() string {
	if n, ok := impactNames[i]; ok {
		return n
	}
	return fmt.Sprintf("Impact(%d)", int(i))
}

func (i Impact) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// Visibility is the access tier of the affected member.
type Visibility int

const (
	VisibilityUnknown Visibility = iota
	Private
	Protected
	Internal
	Public
)

var visibilityNames = map[Visibility]string{
	VisibilityUnknown: "",
	Private:           "private",
	Protected:         "protected",
	Internal:          "internal",
	Public:            "public",
}

func (v Visibility) String() string {
	if n, ok := visibilityNames[v]; ok {
		return n
	}
	return fmt.Sprintf("Visibility(%d)", int(v))
}

func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// WhitespaceIssues is a bitset of line-level whitespace findings.
type WhitespaceIssues uint8

const (
	IndentationChanged WhitespaceIssues = 1 << iota
	MixedTabsSpaces
	TrailingWhitespace
)

func (w WhitespaceIssues) Has(issue WhitespaceIssues) bool { return w&issue != 0 }

func (w WhitespaceIssues) String() string {
	var out string
	add := func(s string) {
		if out != "" {
			out += ","
		}
		out += s
	}
	if w.Has(IndentationChanged) {
		add("indentation-changed")
	}
	if w.Has(MixedTabsSpaces) {
		add("mixed-tabs-spaces")
	}
	if w.Has(TrailingWhitespace) {
		add("trailing-whitespace")
	}
	return out
}

// Node is one change in the tree. Node values are built by the differs and
// the merge step and are immutable once a DiffResult is returned.
//
// ApplicableTargets carries the analyzed targets the change was observed
// under. An empty list means the change applies to every analyzed target —
// the universal shorthand — never "applies to none". A non-empty list is a
// subset of the analyzed-target list, in that list's order.
type Node struct {
	Type              Type             `json:"type"`
	Kind              syntax.Kind      `json:"kind"`
	Name              string           `json:"name,omitempty"`
	OldContent        string           `json:"oldContent,omitempty"`
	NewContent        string           `json:"newContent,omitempty"`
	OldLocation       *syntax.Span     `json:"oldLocation,omitempty"`
	NewLocation       *syntax.Span     `json:"newLocation,omitempty"`
	Children          []*Node          `json:"children,omitempty"`
	Impact            Impact           `json:"impact,omitempty"`
	Visibility        Visibility       `json:"visibility,omitempty"`
	Caveats           []string         `json:"caveats,omitempty"`
	ApplicableTargets []string         `json:"applicableTargets,omitempty"`
	WhitespaceIssues  WhitespaceIssues `json:"whitespaceIssues,omitempty"`
}

// Child appends c and returns n, for fluent tree building.
func (n *Node) Child(c *Node) *Node {
	n.Children = append(n.Children, c)
	return n
}

// Walk visits the node and its descendants depth-first, pre-order. The visit
// function returning false prunes the subtree.
func (n *Node) Walk(visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Meaningful reports whether the node carries a change of its own, as
// opposed to being an unchanged container along the path to one.
func (n *Node) Meaningful() bool {
	return n.Type != Unchanged
}

// Mode selects how a comparison was produced.
type Mode int

const (
	ModeStructural Mode = iota
	ModeLines
)

func (m Mode) String() string {
	switch m {
	case ModeStructural:
		return "structural"
	case ModeLines:
		return "lines"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Stats aggregates change counts over a result tree.
type Stats struct {
	Additions     int `json:"additions"`
	Deletions     int `json:"deletions"`
	Modifications int `json:"modifications"`
	Moves         int `json:"moves"`
	Renames       int `json:"renames"`
}

func (s Stats) Total() int {
	return s.Additions + s.Deletions + s.Modifications + s.Moves + s.Renames
}

// DiffResult is the output of one comparison. AnalyzedTargets is nil unless
// multi-target analysis actually ran; when set it lists the analyzed targets
// in request order.
type DiffResult struct {
	OldPath         string   `json:"oldPath,omitempty"`
	NewPath         string   `json:"newPath,omitempty"`
	Mode            Mode     `json:"mode"`
	Changes         []*Node  `json:"changes"`
	Stats           Stats    `json:"stats"`
	AnalyzedTargets []string `json:"analyzedTargets,omitempty"`
}

// Count walks the change trees once and tallies per-type counts.
func Count(roots []*Node) Stats {
	var s Stats
	for _, root := range roots {
		root.Walk(func(n *Node) bool {
			switch n.Type {
			case Added:
				s.Additions++
			case Removed:
				s.Deletions++
			case Modified:
				s.Modifications++
			case Moved:
				s.Moves++
			case Renamed:
				s.Renames++
			}
			return true
		})
	}
	return s
}
