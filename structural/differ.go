// Package structural computes hierarchical change trees between two
// versions of a source file, merges per-target trees into one attributed
// tree, classifies change impact, and exposes the Compare entry point.
package structural

import (
	"strings"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/syntax"
)

// matchRule drives recursion per node kind. The kind set is closed, so the
// differ dispatches off this table instead of type switches scattered
// around.
type matchRule struct {
	byName  bool // children of this kind pair primarily by (kind, name)
	recurse bool // recurse into children of modified pairs
}

var matchRules = map[syntax.Kind]matchRule{
	syntax.File:      {byName: false, recurse: true},
	syntax.Namespace: {byName: true, recurse: true},
	syntax.Class:     {byName: true, recurse: true},
	syntax.Method:    {byName: true, recurse: true},
	syntax.Property:  {byName: true, recurse: false},
	syntax.Field:     {byName: true, recurse: false},
	syntax.Statement: {byName: false, recurse: false},
	syntax.Line:      {byName: false, recurse: false},
}

// Diff computes the change tree between two syntax trees for one
// already-evaluated target. Either side may be nil: a nil old tree makes
// everything Added, a nil new tree makes everything Removed, both nil yields
// an unchanged empty file node.
func Diff(oldTree, newTree *syntax.Node) *changes.Node {
	switch {
	case oldTree == nil && newTree == nil:
		return &changes.Node{Type: changes.Unchanged, Kind: syntax.File}
	case oldTree == nil:
		return added(newTree)
	case newTree == nil:
		return removed(oldTree)
	}
	return diffPair(oldTree, newTree)
}

// diffPair diffs two matched nodes of the same kind.
func diffPair(old, new *syntax.Node) *changes.Node {
	n := &changes.Node{
		Type:        changes.Unchanged,
		Kind:        new.Kind,
		Name:        new.Name,
		OldLocation: span(old),
		NewLocation: span(new),
	}
	if normalize(old.Text) == normalize(new.Text) {
		return n
	}
	n.Type = changes.Modified
	n.OldContent = old.Text
	n.NewContent = new.Text
	if matchRules[new.Kind].recurse {
		n.Children = diffChildren(old.Children, new.Children)
	}
	return n
}

// diffChildren matches the two child lists and diffs each pair. Matching is
// greedy: (kind, name) identity first, then equal-content pairing for
// anonymous children, then rename detection among the named leftovers, then
// positional fallback. Exact optimal assignment is deliberately not
// attempted.
func diffChildren(oldChildren, newChildren []*syntax.Node) []*changes.Node {
	oldMatch := make([]int, len(oldChildren)) // index into newChildren, -1 if unmatched
	newMatch := make([]int, len(newChildren))
	for i := range oldMatch {
		oldMatch[i] = -1
	}
	for i := range newMatch {
		newMatch[i] = -1
	}

	// Pass 1: (kind, name) identity. Same-named siblings pair up in order,
	// which is the ordinal disambiguation.
	byIdentity := make(map[string][]int)
	for i, c := range oldChildren {
		if c.Name == "" || !matchRules[c.Kind].byName {
			continue
		}
		k := identityKey(c)
		byIdentity[k] = append(byIdentity[k], i)
	}
	for j, c := range newChildren {
		if c.Name == "" || !matchRules[c.Kind].byName {
			continue
		}
		k := identityKey(c)
		if q := byIdentity[k]; len(q) > 0 {
			oldMatch[q[0]] = j
			newMatch[j] = q[0]
			byIdentity[k] = q[1:]
		}
	}

	// Pass 2: anonymous children (statements) pair by equal normalized
	// content first, so an unchanged statement is never reported as a
	// remove/add pair.
	for j, c := range newChildren {
		if newMatch[j] >= 0 || c.Name != "" {
			continue
		}
		for i, o := range oldChildren {
			if oldMatch[i] >= 0 || o.Name != "" || o.Kind != c.Kind {
				continue
			}
			if normalize(o.Text) == normalize(c.Text) {
				oldMatch[i] = j
				newMatch[j] = i
				break
			}
		}
	}

	// Pass 3: rename detection. An unmatched old and new of the same kind
	// whose content is equivalent up to the name is a rename, preferred
	// over a remove/add pair.
	renames := make(map[int]bool)
	for j, c := range newChildren {
		if newMatch[j] >= 0 || c.Name == "" {
			continue
		}
		for i, o := range oldChildren {
			if oldMatch[i] >= 0 || o.Name == "" || o.Kind != c.Kind {
				continue
			}
			if renamedEquivalent(o, c) {
				oldMatch[i] = j
				newMatch[j] = i
				renames[j] = true
				break
			}
		}
	}

	// Pass 4: positional fallback for anonymous children; the k-th leftover
	// old statement pairs with the k-th leftover new one.
	var leftoverOld []int
	for i, c := range oldChildren {
		if oldMatch[i] < 0 && c.Name == "" {
			leftoverOld = append(leftoverOld, i)
		}
	}
	for j, c := range newChildren {
		if newMatch[j] >= 0 || c.Name != "" {
			continue
		}
		var i int
		found := false
		for len(leftoverOld) > 0 {
			i, leftoverOld = leftoverOld[0], leftoverOld[1:]
			if oldChildren[i].Kind == c.Kind {
				found = true
				break
			}
		}
		if found {
			oldMatch[i] = j
			newMatch[j] = i
		}
	}

	// Emit in new-document order, interleaving removed old children at
	// their old positions.
	var out []*changes.Node
	nextOld := 0
	emitRemovedBefore := func(oldIdx int) {
		for ; nextOld < oldIdx; nextOld++ {
			if oldMatch[nextOld] < 0 {
				out = append(out, removed(oldChildren[nextOld]))
			}
		}
	}
	for j, c := range newChildren {
		i := newMatch[j]
		if i < 0 {
			out = append(out, added(c))
			continue
		}
		emitRemovedBefore(i)
		if nextOld == i {
			nextOld++
		}
		pair := diffPair(oldChildren[i], c)
		switch {
		case renames[j]:
			pair.Type = changes.Renamed
			pair.Name = c.Name
			pair.OldContent = oldChildren[i].Text
			pair.NewContent = c.Text
		case pair.Type == changes.Unchanged && i != j && ordinalAmongKind(oldChildren, i) != ordinalAmongKind(newChildren, j):
			// Content intact but the member changed position among its
			// siblings.
			pair.Type = changes.Moved
		}
		out = append(out, pair)
	}
	emitRemovedBefore(len(oldChildren))
	return out
}

// added marks a subtree as new, recursing so that every descendant is
// reported Added in its own right.
func added(n *syntax.Node) *changes.Node {
	c := &changes.Node{
		Type:        changes.Added,
		Kind:        n.Kind,
		Name:        n.Name,
		NewContent:  n.Text,
		NewLocation: span(n),
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, added(child))
	}
	return c
}

// removed is the mirror of added.
func removed(n *syntax.Node) *changes.Node {
	c := &changes.Node{
		Type:        changes.Removed,
		Kind:        n.Kind,
		Name:        n.Name,
		OldContent:  n.Text,
		OldLocation: span(n),
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, removed(child))
	}
	return c
}

// renamedEquivalent reports whether the two nodes differ only in their name:
// substituting a placeholder for each node's own name yields equal
// normalized text.
func renamedEquivalent(a, b *syntax.Node) bool {
	if a.Name == b.Name || a.Name == "" || b.Name == "" {
		return false
	}
	at := strings.ReplaceAll(a.Text, a.Name, "\x00")
	bt := strings.ReplaceAll(b.Text, b.Name, "\x00")
	return normalize(at) == normalize(bt)
}

func identityKey(n *syntax.Node) string {
	return n.Kind.String() + "|" + n.Name
}

func ordinalAmongKind(siblings []*syntax.Node, idx int) int {
	ord := 0
	for i := 0; i < idx; i++ {
		if siblings[i].Kind == siblings[idx].Kind {
			ord++
		}
	}
	return ord
}

// normalize collapses all whitespace runs so formatting does not affect
// structural equality.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func span(n *syntax.Node) *syntax.Span {
	if n == nil || n.Span.IsZero() {
		return nil
	}
	s := n.Span
	return &s
}
