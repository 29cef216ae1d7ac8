package syntax

import (
	"fmt"

	"github.com/randlee/roslyn-diff-sub001/target"
)

// Provider turns source text into a syntax tree. The symbol set selects
// which conditional compilation branches are materialized; a nil set means
// no symbols are defined. Implementations must be safe for concurrent use,
// as the orchestrator parses once per target, possibly in parallel.
type Provider interface {
	Parse(source string, symbols *target.SymbolSet) (*Node, error)
}

// ParseError signals that a provider could not produce a tree. The differ
// degrades to a coarse file-level change instead of propagating it.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse failure at line %d: %s", e.Line, e.Msg)
	}
	return "parse failure: " + e.Msg
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(source string, symbols *target.SymbolSet) (*Node, error)

func (f ProviderFunc) Parse(source string, symbols *target.SymbolSet) (*Node, error) {
	return f(source, symbols)
}
