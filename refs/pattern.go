package refs

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternKind selects how a Pattern matches a ref name.
type PatternKind int

const (
	// KindExact matches the whole name literally.
	KindExact = PatternKind(iota)
	// KindGlob matches with shell style wildcards (* and ?).
	KindGlob
	// KindSubstring matches anywhere in the name.
	KindSubstring
	// KindRegexp matches with a regular expression.
	KindRegexp
)

// Pattern matches ref names. The textual syntax that produces a kind
// (e.g. `glob:`/`regex:` prefixes) lives in the parser; at this layer the
// kind is an already resolved value.
type Pattern struct {
	kind       PatternKind
	text       string
	ignoreCase bool
	re         *regexp.Regexp
}

// NewPattern compiles a pattern of `kind`. It fails on malformed glob or
// regexp syntax, so matching itself can never fail.
func NewPattern(kind PatternKind, text string, ignoreCase bool) (Pattern, error) {
	p := Pattern{kind: kind, text: text, ignoreCase: ignoreCase}

	switch kind {
	case KindGlob:
		// path.Match only reports bad patterns at match time. Probe once:
		if _, err := path.Match(text, ""); err != nil {
			return Pattern{}, fmt.Errorf("bad glob pattern '%s': %v", text, err)
		}
	case KindRegexp:
		expr := text
		if ignoreCase {
			expr = "(?i)" + expr
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return Pattern{}, err
		}

		p.re = re
	}

	return p, nil
}

// Exact returns a case sensitive exact pattern. It cannot fail.
func Exact(text string) Pattern {
	return Pattern{kind: KindExact, text: text}
}

// Substring returns a case sensitive substring pattern. It cannot fail.
func Substring(text string) Pattern {
	return Pattern{kind: KindSubstring, text: text}
}

// Match checks if `name` matches the pattern.
func (p Pattern) Match(name string) bool {
	text := p.text
	if p.ignoreCase && p.kind != KindRegexp {
		text = strings.ToLower(text)
		name = strings.ToLower(name)
	}

	switch p.kind {
	case KindExact:
		return name == text
	case KindGlob:
		ok, err := path.Match(text, name)
		// Pattern was validated in NewPattern.
		return err == nil && ok
	case KindSubstring:
		return strings.Contains(name, text)
	case KindRegexp:
		return p.re.MatchString(name)
	}

	return false
}

// IsExact checks if the pattern is a literal name match.
func (p Pattern) IsExact() bool {
	return p.kind == KindExact && !p.ignoreCase
}

// Text returns the raw pattern text.
func (p Pattern) Text() string {
	return p.text
}

// String will return a nice representation of the pattern.
func (p Pattern) String() string {
	kind := "exact"
	switch p.kind {
	case KindGlob:
		kind = "glob"
	case KindSubstring:
		kind = "substring"
	case KindRegexp:
		kind = "regex"
	}

	if p.ignoreCase {
		kind += "-i"
	}

	return fmt.Sprintf("%s:%s", kind, p.text)
}
