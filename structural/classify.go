package structural

import (
	"strings"

	"github.com/randlee/roslyn-diff-sub001/changes"
	"github.com/randlee/roslyn-diff-sub001/syntax"
)

// Classify walks a merged change tree bottom-up and fills in impact,
// visibility and caveats. The tree's shape is never altered; unchanged
// containers with no changed descendants stay uncategorized.
func Classify(root *changes.Node) {
	classify(root)
}

func classify(n *changes.Node) changes.Impact {
	worst := changes.ImpactNone
	for _, c := range n.Children {
		if ci := classify(c); severity(ci) > severity(worst) {
			worst = ci
		}
	}
	n.Visibility = visibilityOf(n)
	n.Caveats = caveatsOf(n)

	switch n.Type {
	case changes.Unchanged:
		// Containers along the path to a change take the most severe
		// impact found below; untouched subtrees stay uncategorized.
		n.Impact = worst
	case changes.Added:
		n.Impact = escalate(changes.NonBreaking, worst)
	case changes.Moved:
		n.Impact = escalate(changes.NonBreaking, worst)
	case changes.Removed, changes.Renamed:
		n.Impact = escalate(breakingFor(n), worst)
	case changes.Modified:
		n.Impact = escalate(modifiedImpact(n), worst)
	}
	return n.Impact
}

// modifiedImpact decides what a modification to this node alone means.
func modifiedImpact(n *changes.Node) changes.Impact {
	if normalize(n.OldContent) == normalize(n.NewContent) {
		return changes.FormattingOnly
	}
	if memberKind(n.Kind) && signatureOf(n.OldContent) != signatureOf(n.NewContent) {
		return breakingFor(n)
	}
	return changes.NonBreaking
}

// breakingFor maps the member's visibility tier to a breaking-change tier.
// Protected members are part of the inheritance surface, so they break like
// public ones.
func breakingFor(n *changes.Node) changes.Impact {
	switch visibilityOf(n) {
	case changes.Public, changes.Protected:
		return changes.BreakingPublicAPI
	case changes.Internal:
		return changes.BreakingInternalAPI
	default:
		return changes.NonBreaking
	}
}

func escalate(own, children changes.Impact) changes.Impact {
	if severity(children) > severity(own) {
		return children
	}
	return own
}

// severity orders impact tiers: BreakingPublicApi > BreakingInternalApi >
// NonBreaking > FormattingOnly > uncategorized.
func severity(i changes.Impact) int {
	switch i {
	case changes.BreakingPublicAPI:
		return 4
	case changes.BreakingInternalAPI:
		return 3
	case changes.NonBreaking:
		return 2
	case changes.FormattingOnly:
		return 1
	}
	return 0
}

func memberKind(k syntax.Kind) bool {
	switch k {
	case syntax.Class, syntax.Method, syntax.Property, syntax.Field:
		return true
	}
	return false
}

// visibilityOf infers the access tier from declaration modifiers. The
// default for members without an access modifier is private, as in the
// language.
func visibilityOf(n *changes.Node) changes.Visibility {
	if !memberKind(n.Kind) {
		return changes.VisibilityUnknown
	}
	sig := signatureOf(n.NewContent)
	if sig == "" {
		sig = signatureOf(n.OldContent)
	}
	words := strings.Fields(sig)
	for _, w := range words {
		switch w {
		case "public":
			return changes.Public
		case "protected":
			return changes.Protected
		case "internal":
			return changes.Internal
		case "private":
			return changes.Private
		}
	}
	return changes.Private
}

// signatureOf extracts the declaration signature: everything before the
// body opener, whitespace-normalized. Good enough to tell a body edit from
// a signature change.
func signatureOf(text string) string {
	if i := strings.IndexByte(text, '{'); i >= 0 {
		text = text[:i]
	} else if i := strings.Index(text, "=>"); i >= 0 {
		text = text[:i]
	} else if i := strings.IndexByte(text, '='); i >= 0 {
		// Field initializers are not part of the signature.
		text = text[:i]
	}
	return normalize(text)
}

// caveatsOf appends advisory warnings for members whose blast radius is
// wider than the static surface suggests. Caveats never change the impact
// tier.
func caveatsOf(n *changes.Node) []string {
	if n.Type == changes.Unchanged {
		return nil
	}
	content := n.NewContent
	if content == "" {
		content = n.OldContent
	}
	var out []string
	sig := signatureOf(content)
	if containsWord(sig, "virtual") || containsWord(sig, "override") || containsWord(sig, "abstract") {
		out = append(out, "member is overridable; derived types may be affected")
	}
	if n.Type == changes.Added && containsWord(sig, "abstract") {
		out = append(out, "adding an abstract member breaks existing subclasses")
	}
	for _, marker := range []string{"GetMethod(", "GetProperty(", "GetField(", "Activator.CreateInstance", "[DynamicallyAccessedMembers"} {
		if strings.Contains(content, marker) {
			out = append(out, "member appears to be used via reflection; renames and removals may not be caught at compile time")
			break
		}
	}
	if strings.Contains(content, "[Obsolete") {
		out = append(out, "member is marked obsolete")
	}
	return out
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if f == word {
			return true
		}
	}
	return false
}
