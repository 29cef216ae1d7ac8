// Package syntax defines the syntax tree consumed by the structural differ,
// the contract for parse providers, and the conditional compilation
// machinery shared by providers: the cheap directive pre-scan and the
// symbol-driven branch evaluator.
package syntax

import "fmt"

// Kind tags a node with its structural role. It is a closed set; the differ
// dispatches recursion rules off it.
type Kind int

const (
	File Kind = iota
	Namespace
	Class
	Method
	Property
	Field
	Statement
	Line
)

var kindNames = map[Kind]string{
	File:      "file",
	Namespace: "namespace",
	Class:     "class",
	Method:    "method",
	Property:  "property",
	Field:     "field",
	Statement: "statement",
	Line:      "line",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Container reports whether nodes of this kind have children the differ
// recurses into. Statement and Line nodes are compared by content only.
func (k Kind) Container() bool {
	switch k {
	case File, Namespace, Class:
		return true
	}
	return false
}

// Span is a half-open source region. Lines and columns are 1-based.
type Span struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// Node is one node of an already-evaluated syntax tree. The differ treats
// trees as read-only input: providers build them, nothing mutates them
// afterwards.
type Node struct {
	Kind     Kind
	Name     string // empty for anonymous nodes (statements, file roots)
	Span     Span
	Text     string // raw source text covered by the node
	Children []*Node
}

// Child appends c and returns n, for fluent tree building in providers and
// tests.
func (n *Node) Child(c *Node) *Node {
	n.Children = append(n.Children, c)
	return n
}
