// Package diff holds the whitespace policy engine and the line-level
// fallback differ. The structural differ in package structural does not
// depend on it; the two share only the changes model.
package diff

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Policy selects how whitespace participates in line equality.
type Policy int

const (
	// Exact compares lines byte for byte.
	Exact Policy = iota
	// IgnoreLeadingTrailing trims the leading and trailing whitespace runs
	// before comparing.
	IgnoreLeadingTrailing
	// IgnoreAll additionally collapses internal whitespace runs to a single
	// space.
	IgnoreAll
	// LanguageAware picks Exact or IgnoreLeadingTrailing from the file's
	// whitespace sensitivity classification.
	LanguageAware
)

func (p Policy) String() string {
	switch p {
	case Exact:
		return "exact"
	case IgnoreLeadingTrailing:
		return "ignore-leading-trailing"
	case IgnoreAll:
		return "ignore-all"
	case LanguageAware:
		return "language-aware"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Sensitivity classifies a language's relationship to whitespace.
type Sensitivity int

const (
	Unknown Sensitivity = iota
	Significant
	Insignificant
)

// Options resolve to one effective policy. An explicitly set policy always
// wins; the legacy boolean only matters when no policy was set.
type Options struct {
	Policy    Policy
	PolicySet bool // distinguishes "explicitly Exact" from "not set"
	// LegacyIgnore is the old "ignore whitespace" boolean; true means
	// IgnoreLeadingTrailing when no explicit policy was given.
	LegacyIgnore bool
	// Path hints for LanguageAware classification. The new path is
	// preferred, then the old.
	OldPath string
	NewPath string
}

// Resolve computes the effective policy. LanguageAware is resolved here to
// Exact or IgnoreLeadingTrailing; callers downstream never see it.
func (o Options) Resolve() Policy {
	p := Exact
	switch {
	case o.PolicySet:
		p = o.Policy
	case o.LegacyIgnore:
		p = IgnoreLeadingTrailing
	}
	if p != LanguageAware {
		return p
	}
	path := o.NewPath
	if path == "" {
		path = o.OldPath
	}
	if path == "" {
		return Exact
	}
	switch Classify(path) {
	case Insignificant:
		return IgnoreLeadingTrailing
	default:
		// Significant and Unknown both play it safe.
		return Exact
	}
}

// Whitespace-insignificant languages: brace-structured and markup files
// where reindenting does not change meaning.
var insignificantExtensions = map[string]struct{}{
	"cs": {}, "vb": {}, "go": {}, "java": {}, "js": {}, "ts": {},
	"c": {}, "h": {}, "cpp": {}, "hpp": {}, "cc": {}, "hh": {},
	"json": {}, "xml": {}, "html": {}, "htm": {}, "css": {},
	"rs": {}, "kt": {}, "scala": {}, "php": {}, "cshtml": {}, "csproj": {},
}

// Whitespace-significant languages: indentation or leading tabs carry
// meaning.
var significantExtensions = map[string]struct{}{
	"py": {}, "yaml": {}, "yml": {}, "fs": {}, "fsx": {}, "fsi": {},
	"hs": {}, "sass": {}, "styl": {}, "cob": {}, "nim": {},
}

// Extensionless build scripts where tabs are load-bearing.
var significantBaseNames = map[string]struct{}{
	"makefile": {}, "gnumakefile": {}, "bsdmakefile": {},
}

// Classify determines a file's whitespace sensitivity from its extension,
// or for extensionless files from its exact base name, case-insensitively.
func Classify(path string) Sensitivity {
	base := strings.ToLower(filepath.Base(path))
	ext := ""
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		ext = base[i+1:]
	}
	if ext == "" {
		if _, ok := significantBaseNames[base]; ok {
			return Significant
		}
		return Unknown
	}
	if _, ok := insignificantExtensions[ext]; ok {
		return Insignificant
	}
	if _, ok := significantExtensions[ext]; ok {
		return Significant
	}
	return Unknown
}

// Transform normalizes a line for equality under the policy. LanguageAware
// must be resolved before calling.
func Transform(line string, p Policy) string {
	switch p {
	case IgnoreLeadingTrailing:
		return strings.TrimSpace(line)
	case IgnoreAll:
		return strings.Join(strings.Fields(line), " ")
	default:
		return line
	}
}

// Equal compares two lines under the policy.
func Equal(a, b string, p Policy) bool {
	return Transform(a, p) == Transform(b, p)
}
