package syntax

import (
	"fmt"
	"strings"

	"github.com/randlee/roslyn-diff-sub001/target"
)

// EvaluateDirectives resolves #if/#elif/#else/#endif blocks against the
// given symbol set and returns the source with inactive branches removed.
// Removed lines (including the directive lines themselves) are replaced by
// blank lines so that line numbers in the evaluated text match the original
// — spans reported by providers stay meaningful against the input.
//
// #define and #undef amend a private copy of the symbol set, so evaluation
// never mutates the caller's set. Other directives (#region, #pragma,
// #nullable, #warning, #error, ...) pass through unchanged when active.
func EvaluateDirectives(source string, symbols *target.SymbolSet) (string, error) {
	if !HasDirectives(source) {
		return source, nil
	}
	defined := target.NewSymbolSet()
	if symbols != nil {
		defined = symbols.Clone()
	}

	lines := splitLines(source)
	out := make([]string, len(lines))

	// Each frame tracks one #if/#endif block: whether the enclosing context
	// is active, whether the current branch is taken, and whether any
	// earlier branch of the block was taken (an #elif after a taken branch
	// can never activate).
	type frame struct {
		parentActive bool
		branchActive bool
		anyTaken     bool
		sawElse      bool
	}
	var stack []frame
	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].branchActive
	}

	for i, line := range lines {
		keyword, arg, isDirective := directive(line)
		if !isDirective {
			if active() {
				out[i] = line
			}
			continue
		}
		// Directive lines themselves never survive into the evaluated text,
		// except for pass-through directives in active regions.
		switch keyword {
		case "if":
			parent := active()
			taken := false
			if parent {
				v, err := evalCondition(arg, defined)
				if err != nil {
					return "", fmt.Errorf("line %d: %w", i+1, err)
				}
				taken = v
			}
			stack = append(stack, frame{parentActive: parent, branchActive: parent && taken, anyTaken: taken})
		case "elif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #elif without #if", i+1)
			}
			f := &stack[len(stack)-1]
			if f.sawElse {
				return "", fmt.Errorf("line %d: #elif after #else", i+1)
			}
			taken := false
			if f.parentActive && !f.anyTaken {
				v, err := evalCondition(arg, defined)
				if err != nil {
					return "", fmt.Errorf("line %d: %w", i+1, err)
				}
				taken = v
			}
			f.branchActive = f.parentActive && taken
			f.anyTaken = f.anyTaken || taken
		case "else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without #if", i+1)
			}
			f := &stack[len(stack)-1]
			if f.sawElse {
				return "", fmt.Errorf("line %d: duplicate #else", i+1)
			}
			f.sawElse = true
			f.branchActive = f.parentActive && !f.anyTaken
			f.anyTaken = true
		case "endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without #if", i+1)
			}
			stack = stack[:len(stack)-1]
		case "define":
			if active() && arg != "" {
				defined.Define(strings.Fields(arg)[0])
			}
		case "undef":
			if active() && arg != "" {
				defined.Undefine(strings.Fields(arg)[0])
			}
		default:
			if active() {
				out[i] = line
			}
		}
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("unterminated #if: %d block(s) open at end of input", len(stack))
	}
	return strings.Join(out, "\n"), nil
}

// directive recognizes a line whose first non-blank character is '#' and
// splits it into keyword and argument.
func directive(line string) (keyword, arg string, ok bool) {
	s := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(s, "#") {
		return "", "", false
	}
	s = strings.TrimLeft(s[1:], " \t")
	i := 0
	for i < len(s) && (s[i] >= 'a' && s[i] <= 'z') {
		i++
	}
	keyword = s[:i]
	arg = strings.TrimSpace(s[i:])
	// Strip a trailing line comment from the condition.
	if j := strings.Index(arg, "//"); j >= 0 {
		arg = strings.TrimSpace(arg[:j])
	}
	return keyword, arg, true
}

// splitLines splits on '\n', keeping '\r' attached to the preceding line so
// that rejoining preserves CRLF endings.
func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// Condition grammar, smallest binding first:
//
//	or     = and { "||" and }
//	and    = eq { "&&" eq }
//	eq     = unary { ("==" | "!=") unary }
//	unary  = "!" unary | primary
//	primary = "(" or ")" | "true" | "false" | symbol
type condParser struct {
	toks []string
	pos  int
	defs *target.SymbolSet
}

func evalCondition(expr string, defined *target.SymbolSet) (bool, error) {
	toks, err := tokenizeCondition(expr)
	if err != nil {
		return false, err
	}
	if len(toks) == 0 {
		return false, fmt.Errorf("empty directive condition")
	}
	p := &condParser{toks: toks, defs: defined}
	v, err := p.or()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("unexpected token %q in directive condition", p.toks[p.pos])
	}
	return v, nil
}

func tokenizeCondition(expr string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == '!':
			if i+1 < len(expr) && expr[i+1] == '=' {
				toks = append(toks, "!=")
				i += 2
			} else {
				toks = append(toks, "!")
				i++
			}
		case c == '&' || c == '|' || c == '=':
			if i+1 >= len(expr) || expr[i+1] != c {
				return nil, fmt.Errorf("stray %q in directive condition", string(c))
			}
			toks = append(toks, expr[i:i+2])
			i += 2
		case isSymbolChar(c):
			j := i
			for j < len(expr) && isSymbolChar(expr[j]) {
				j++
			}
			toks = append(toks, expr[i:j])
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q in directive condition", string(c))
		}
	}
	return toks, nil
}

func isSymbolChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (p *condParser) or() (bool, error) {
	v, err := p.and()
	if err != nil {
		return false, err
	}
	for p.peek() == "||" {
		p.pos++
		w, err := p.and()
		if err != nil {
			return false, err
		}
		v = v || w
	}
	return v, nil
}

func (p *condParser) and() (bool, error) {
	v, err := p.eq()
	if err != nil {
		return false, err
	}
	for p.peek() == "&&" {
		p.pos++
		w, err := p.eq()
		if err != nil {
			return false, err
		}
		v = v && w
	}
	return v, nil
}

func (p *condParser) eq() (bool, error) {
	v, err := p.unary()
	if err != nil {
		return false, err
	}
	for {
		op := p.peek()
		if op != "==" && op != "!=" {
			return v, nil
		}
		p.pos++
		w, err := p.unary()
		if err != nil {
			return false, err
		}
		if op == "==" {
			v = v == w
		} else {
			v = v != w
		}
	}
}

func (p *condParser) unary() (bool, error) {
	if p.peek() == "!" {
		p.pos++
		v, err := p.unary()
		return !v, err
	}
	return p.primary()
}

func (p *condParser) primary() (bool, error) {
	tok := p.peek()
	switch tok {
	case "":
		return false, fmt.Errorf("unexpected end of directive condition")
	case "(":
		p.pos++
		v, err := p.or()
		if err != nil {
			return false, err
		}
		if p.peek() != ")" {
			return false, fmt.Errorf("missing closing parenthesis in directive condition")
		}
		p.pos++
		return v, nil
	case ")", "!", "&&", "||", "==", "!=":
		return false, fmt.Errorf("unexpected token %q in directive condition", tok)
	case "true":
		p.pos++
		return true, nil
	case "false":
		p.pos++
		return false, nil
	default:
		p.pos++
		return p.defs.Defined(tok), nil
	}
}

func (p *condParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}
