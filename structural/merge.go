package structural

import (
	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/syntax"
)

// mergeTargets folds per-target change trees into one tree annotated with
// the targets each change applies to.
//
// Attribution uses the universal shorthand: a node whose outcome was
// produced by every analyzed target carries an empty ApplicableTargets;
// anything else carries the exact subset, in analyzed order. Targets for
// which a given structural identity is entirely absent contribute nothing
// to that identity.
//
// analyzed lists the targets in request order; variants maps target id to
// that target's file-level change root. A target that failed without even a
// coarse result has a nil entry and never appears in any subset.
func mergeTargets(analyzed []string, variants map[string]*changes.Node) []*changes.Node {
	group := make([]*changes.Node, 0, len(analyzed))
	subset := make([]string, 0, len(analyzed))
	for _, t := range analyzed {
		if v := variants[t]; v != nil {
			group = append(group, v)
			subset = append(subset, t)
		}
	}
	if len(group) == 0 {
		return []*changes.Node{{Type: changes.Unchanged, Kind: syntax.File}}
	}
	// File variants share identity, so this is normally a single node;
	// outcomes that cannot be unified come back as per-target siblings.
	return mergeVariants(analyzed, subset, group)
}

// identity is the stable structural identity used to match the "same"
// declaration across per-target trees.
type identity struct {
	kind    syntax.Kind
	name    string
	ordinal int // disambiguates same-named siblings
}

// outcomeKey groups leaf variants that are semantically equal.
type outcomeKey struct {
	typ        changes.Type
	name       string
	oldContent string
	newContent string
}

// mergeVariants merges the variants of one identity, observed under the
// targets in subset (aligned index-wise with group). It returns one node
// per distinct outcome; containers of the same change type unify into a
// single node with recursively merged children.
func mergeVariants(analyzed, subset []string, group []*changes.Node) []*changes.Node {
	if isContainer(group) {
		return mergeContainers(analyzed, subset, group)
	}
	// Leaves: group by full outcome.
	order := make([]outcomeKey, 0, len(group))
	byOutcome := make(map[outcomeKey][]int)
	for i, v := range group {
		k := outcomeKey{typ: v.Type, name: v.Name, oldContent: normalize(v.OldContent), newContent: normalize(v.NewContent)}
		if _, seen := byOutcome[k]; !seen {
			order = append(order, k)
		}
		byOutcome[k] = append(byOutcome[k], i)
	}
	var out []*changes.Node
	for _, k := range order {
		idxs := byOutcome[k]
		v := group[idxs[0]]
		n := *v // shallow copy; leaves have no children
		n.ApplicableTargets = attribution(analyzed, subset, idxs)
		out = append(out, &n)
	}
	return out
}

// mergeContainers unifies container variants. Variants sharing a change
// type become one node whose children are merged recursively; Unchanged and
// Modified variants share a group, since a container unchanged under one
// target and modified under another is still the same container.
func mergeContainers(analyzed, subset []string, group []*changes.Node) []*changes.Node {
	typeKey := func(t changes.Type) changes.Type {
		if t == changes.Unchanged {
			return changes.Modified
		}
		return t
	}
	var order []changes.Type
	byType := make(map[changes.Type][]int)
	for i, v := range group {
		k := typeKey(v.Type)
		if _, seen := byType[k]; !seen {
			order = append(order, k)
		}
		byType[k] = append(byType[k], i)
	}
	var out []*changes.Node
	for _, k := range order {
		idxs := byType[k]
		first := group[idxs[0]]
		n := &changes.Node{
			Kind:        first.Kind,
			Name:        first.Name,
			OldLocation: first.OldLocation,
			NewLocation: first.NewLocation,
		}
		n.Type = changes.Unchanged
		var meaningful []int
		for _, i := range idxs {
			if group[i].Meaningful() {
				n.Type = group[i].Type
				n.OldContent = group[i].OldContent
				n.NewContent = group[i].NewContent
				meaningful = append(meaningful, i)
			}
		}
		n.Children = mergeChildren(analyzed, pick(subset, idxs), pickNodes(group, idxs))
		if n.Type != changes.Unchanged {
			// Container-only changes inherit their attribution from the
			// union of targets under which the container changed, which is
			// exactly the union of its meaningful children's targets plus
			// any own-content delta.
			n.ApplicableTargets = attribution(analyzed, subset, meaningful)
		}
		out = append(out, n)
	}
	return out
}

// mergeChildren merges the child lists of container variants: children are
// grouped by structural identity, first seen in target order, and each
// identity group merges independently.
func mergeChildren(analyzed, subset []string, parents []*changes.Node) []*changes.Node {
	type slot struct {
		subset []string
		group  []*changes.Node
	}
	var order []identity
	slots := make(map[identity]*slot)
	for pi, p := range parents {
		ordinals := make(map[string]int)
		for _, c := range p.Children {
			key := c.Kind.String() + "|" + c.Name
			id := identity{kind: c.Kind, name: c.Name, ordinal: ordinals[key]}
			ordinals[key]++
			s, seen := slots[id]
			if !seen {
				s = &slot{}
				slots[id] = s
				order = append(order, id)
			}
			s.subset = append(s.subset, subset[pi])
			s.group = append(s.group, c)
		}
	}
	var out []*changes.Node
	for _, id := range order {
		s := slots[id]
		out = append(out, mergeVariants(analyzed, s.subset, s.group)...)
	}
	return out
}

// attribution yields the ApplicableTargets value for an outcome observed
// under subset[idxs]: nil (the universal shorthand) when the outcome covers
// every analyzed target, otherwise the subset in analyzed-list order.
func attribution(analyzed, subset []string, idxs []int) []string {
	if len(idxs) == len(analyzed) {
		return nil
	}
	seen := make(map[string]bool, len(idxs))
	for _, i := range idxs {
		seen[subset[i]] = true
	}
	var out []string
	for _, t := range analyzed {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

func isContainer(group []*changes.Node) bool {
	for _, v := range group {
		if len(v.Children) > 0 || matchRules[v.Kind].recurse {
			return true
		}
	}
	return false
}

func pick(subset []string, idxs []int) []string {
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = subset[idx]
	}
	return out
}

func pickNodes(group []*changes.Node, idxs []int) []*changes.Node {
	out := make([]*changes.Node, len(idxs))
	for i, idx := range idxs {
		out[i] = group[idx]
	}
	return out
}
