package structural

import (
	"fmt"
	"strings"

	"github.com/randlee/roslyn-diff-sub001/syntax"
	"github.com/randlee/roslyn-diff-sub001/target"
)

// sn builds a syntax node for differ tests.
func sn(kind syntax.Kind, name, text string, children ...*syntax.Node) *syntax.Node {
	return &syntax.Node{Kind: kind, Name: name, Text: text, Children: children}
}

// outlineProvider is the stub parse provider used by engine and merge
// tests. It evaluates conditional directives for real and then reads an
// indentation-based outline, two spaces per level:
//
//	class Counter public class Counter
//	  field count private int count
//	  method Increment public void Increment() { count++; }
//
// First word is the kind, second the name (statements have no name, the
// whole remainder is their text). A container's text covers its own header
// and everything nested under it, like a real provider's source spans. A
// line reading PARSE_ERROR makes parsing fail, for failure-isolation tests.
type outlineProvider struct{}

var outlineKinds = map[string]syntax.Kind{
	"namespace": syntax.Namespace,
	"class":     syntax.Class,
	"method":    syntax.Method,
	"property":  syntax.Property,
	"field":     syntax.Field,
	"statement": syntax.Statement,
}

func (outlineProvider) Parse(source string, symbols *target.SymbolSet) (*syntax.Node, error) {
	evaluated, err := syntax.EvaluateDirectives(source, symbols)
	if err != nil {
		return nil, &syntax.ParseError{Msg: err.Error()}
	}
	root := &syntax.Node{Kind: syntax.File}
	stack := []*syntax.Node{root}
	depths := []int{-1}
	for i, raw := range strings.Split(evaluated, "\n") {
		line := strings.TrimRight(raw, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "PARSE_ERROR") {
			return nil, &syntax.ParseError{Line: i + 1, Msg: "unexpected token"}
		}
		depth := (len(line) - len(strings.TrimLeft(line, " "))) / 2
		for depths[len(depths)-1] >= depth {
			stack = stack[:len(stack)-1]
			depths = depths[:len(depths)-1]
		}
		fields := strings.Fields(line)
		kind, ok := outlineKinds[fields[0]]
		if !ok {
			return nil, &syntax.ParseError{Line: i + 1, Msg: fmt.Sprintf("unknown kind %q", fields[0])}
		}
		n := &syntax.Node{
			Kind: kind,
			Span: syntax.Span{StartLine: i + 1, StartCol: 1, EndLine: i + 1},
		}
		switch kind {
		case syntax.Statement:
			n.Text = strings.Join(fields[1:], " ")
		default:
			n.Name = fields[1]
			n.Text = strings.Join(fields[2:], " ")
		}
		stack[len(stack)-1].Child(n)
		stack = append(stack, n)
		depths = append(depths, depth)
	}
	fillContainerText(root)
	return root, nil
}

// fillContainerText makes each container's text cover its subtree, so that
// a child edit is visible in the parent's normalized text exactly as it
// would be with real source spans.
func fillContainerText(n *syntax.Node) {
	for _, c := range n.Children {
		fillContainerText(c)
	}
	if len(n.Children) > 0 {
		parts := []string{n.Text}
		for _, c := range n.Children {
			parts = append(parts, c.Text)
		}
		n.Text = strings.TrimSpace(strings.Join(parts, "\n"))
	}
}
