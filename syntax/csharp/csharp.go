// Package csharp is the tree-sitter-backed parse provider for C# sources.
// It evaluates conditional compilation directives against the caller's
// symbol set before parsing, so the produced tree reflects exactly the
// branches active under that target.
package csharp

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/randlee/roslyn-diff-sub001/syntax"
	"github.com/randlee/roslyn-diff-sub001/target"
)

// Provider implements syntax.Provider. Instances are safe for concurrent
// use: each Parse call creates its own tree-sitter parser.
type Provider struct{}

func New() Provider { return Provider{} }

func (Provider) Parse(source string, symbols *target.SymbolSet) (*syntax.Node, error) {
	evaluated, err := syntax.EvaluateDirectives(source, symbols)
	if err != nil {
		return nil, &syntax.ParseError{Msg: err.Error()}
	}
	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())
	content := []byte(evaluated)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &syntax.ParseError{Msg: err.Error()}
	}
	defer tree.Close()
	root := tree.RootNode()
	if root.HasError() {
		return nil, &syntax.ParseError{Line: firstErrorLine(root), Msg: "syntax error"}
	}
	file := &syntax.Node{
		Kind: syntax.File,
		Span: spanOf(root),
		Text: evaluated,
	}
	appendMembers(file, root, content)
	return file, nil
}

// appendMembers converts the named children of a container into syntax
// nodes. Anything that is not a recognized declaration becomes a Statement
// leaf, so unknown constructs still participate in the diff by content.
func appendMembers(parent *syntax.Node, node *sitter.Node, content []byte) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		parent.Child(convert(child, content))
	}
}

func convert(node *sitter.Node, content []byte) *syntax.Node {
	n := &syntax.Node{
		Span: spanOf(node),
		Text: node.Content(content),
	}
	switch node.Type() {
	case "namespace_declaration", "file_scoped_namespace_declaration":
		n.Kind = syntax.Namespace
		n.Name = fieldContent(node, "name", content)
		appendBody(n, node, content)
	case "class_declaration", "interface_declaration", "struct_declaration",
		"record_declaration", "enum_declaration":
		n.Kind = syntax.Class
		n.Name = fieldContent(node, "name", content)
		appendBody(n, node, content)
	case "method_declaration", "constructor_declaration", "destructor_declaration",
		"operator_declaration", "conversion_operator_declaration":
		n.Kind = syntax.Method
		n.Name = fieldContent(node, "name", content)
		if body := node.ChildByFieldName("body"); body != nil {
			appendMembers(n, body, content)
		}
	case "property_declaration", "indexer_declaration", "event_declaration":
		n.Kind = syntax.Property
		n.Name = fieldContent(node, "name", content)
	case "field_declaration", "event_field_declaration":
		n.Kind = syntax.Field
		n.Name = declaratorName(node, content)
	case "enum_member_declaration":
		n.Kind = syntax.Field
		n.Name = fieldContent(node, "name", content)
	case "delegate_declaration":
		n.Kind = syntax.Method
		n.Name = fieldContent(node, "name", content)
	default:
		n.Kind = syntax.Statement
	}
	return n
}

// appendBody recurses into a declaration's body list when present; a
// file-scoped namespace has no body node, its members are direct siblings.
func appendBody(n *syntax.Node, node *sitter.Node, content []byte) {
	if body := node.ChildByFieldName("body"); body != nil {
		appendMembers(n, body, content)
		return
	}
	if node.Type() != "file_scoped_namespace_declaration" {
		return
	}
	name := node.ChildByFieldName("name")
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == name || child.Type() == "comment" {
			continue
		}
		n.Child(convert(child, content))
	}
}

func fieldContent(node *sitter.Node, field string, content []byte) string {
	f := node.ChildByFieldName(field)
	if f == nil {
		return ""
	}
	return f.Content(content)
}

// declaratorName digs the first variable_declarator's name out of a field
// declaration.
func declaratorName(node *sitter.Node, content []byte) string {
	var find func(n *sitter.Node) string
	find = func(n *sitter.Node) string {
		if n.Type() == "variable_declarator" {
			if name := n.ChildByFieldName("name"); name != nil {
				return name.Content(content)
			}
			if n.NamedChildCount() > 0 {
				return n.NamedChild(0).Content(content)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if s := find(n.NamedChild(i)); s != "" {
				return s
			}
		}
		return ""
	}
	return find(node)
}

func firstErrorLine(root *sitter.Node) int {
	line := 0
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.IsError() {
			line = int(n.StartPoint().Row) + 1
			return true
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if walk(n.NamedChild(i)) {
				return true
			}
		}
		return false
	}
	walk(root)
	return line
}

func spanOf(node *sitter.Node) syntax.Span {
	return syntax.Span{
		StartLine: int(node.StartPoint().Row) + 1,
		StartCol:  int(node.StartPoint().Column) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		EndCol:    int(node.EndPoint().Column) + 1,
	}
}
