package syntax

// HasDirectives reports whether the source text contains any line whose
// first non-blank character introduces a preprocessor directive. It is a
// cheap over-approximation: a '#' inside a multi-line string or comment
// still triggers, which only costs redundant per-target work. It must never
// miss a real directive, since that would silently skip multi-target
// analysis.
func HasDirectives(source string) bool {
	leading := true // no non-blank character seen yet on this line
	for i := 0; i < len(source); i++ {
		switch c := source[i]; {
		case c == '\n':
			leading = true
		case leading && (c == ' ' || c == '\t' || c == '\r'):
			// still in the indentation run
		case leading && c == '#':
			return true
		default:
			leading = false
		}
	}
	return false
}

// HasDirectivesEither is the pre-scanner verdict over an old/new pair.
func HasDirectivesEither(oldSource, newSource string) bool {
	return HasDirectives(oldSource) || HasDirectives(newSource)
}
