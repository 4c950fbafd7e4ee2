package router

import (
	"strings"

	"github.com/velo-dev/velo/pkg/component"
)

// segmentKind classifies one segment of a compiled pattern.
type segmentKind int

const (
	segStatic segmentKind = iota
	segParam
	segWildcard
)

// segment is one compiled path segment.
type segment struct {
	kind segmentKind

	// literal is the segment text for static segments.
	literal string

	// name is the parameter name for param and wildcard segments.
	name string
}

// Pattern is a compiled route pattern. Patterns are immutable once
// compiled.
//
// Syntax:
//
//	/blog/posts      static segments
//	/blog/:id        named dynamic segment
//	/docs/:rest*     trailing wildcard capturing the remaining path
type Pattern struct {
	raw      string
	segments []segment
	wildcard bool
}

// CompilePattern compiles a route pattern. The wildcard form is only
// recognized in the trailing position; a non-trailing ":name*" segment is
// treated as a dynamic segment named "name*", which will never match a
// concrete path segment containing no "*".
func CompilePattern(raw string) *Pattern {
	p := &Pattern{raw: raw}
	parts := splitPath(raw)

	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":") && strings.HasSuffix(part, "*") && i == len(parts)-1:
			p.segments = append(p.segments, segment{
				kind: segWildcard,
				name: strings.TrimSuffix(part[1:], "*"),
			})
			p.wildcard = true
		case strings.HasPrefix(part, ":"):
			p.segments = append(p.segments, segment{
				kind: segParam,
				name: part[1:],
			})
		default:
			p.segments = append(p.segments, segment{kind: segStatic, literal: part})
		}
	}

	return p
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// Match matches a concrete path against the pattern. Matching is
// case-sensitive and anchored: every path segment must be consumed.
// Returns the extracted parameters and whether the path matched.
func (p *Pattern) Match(path string) (component.Params, bool) {
	parts := splitPath(path)
	params := make(component.Params)

	for i, seg := range p.segments {
		switch seg.kind {
		case segWildcard:
			// Captures the rest of the path, including none of it.
			params[seg.name] = strings.Join(parts[i:], "/")
			return params, true
		case segParam:
			if i >= len(parts) {
				return nil, false
			}
			params[seg.name] = parts[i]
		case segStatic:
			if i >= len(parts) || parts[i] != seg.literal {
				return nil, false
			}
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// moreSpecific reports whether p should be tried before other when both
// could match a path. Specificity is compared segment-by-segment left to
// right: static outranks dynamic, dynamic outranks wildcard. Longer
// patterns win ties so /a/b sorts before /a.
func (p *Pattern) moreSpecific(other *Pattern) bool {
	a, b := p.segments, other.segments
	for i := 0; i < len(a) && i < len(b); i++ {
		ra, rb := segmentRank(a[i]), segmentRank(b[i])
		if ra != rb {
			return ra < rb
		}
	}
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return p.raw < other.raw
}

// segmentRank orders segment kinds by specificity; lower is more specific.
func segmentRank(s segment) int {
	switch s.kind {
	case segStatic:
		return 0
	case segParam:
		return 1
	default:
		return 2
	}
}

// splitPath splits a path into segments, dropping the empty leading and
// trailing pieces so "/" and "" both yield nil.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// patternPrefixes returns the pattern's path-segment prefixes from root to
// the full pattern, always starting with "/".
//
//	/blog/:id → ["/", "/blog", "/blog/:id"]
func patternPrefixes(raw string) []string {
	parts := splitPath(raw)
	prefixes := make([]string, 0, len(parts)+1)
	prefixes = append(prefixes, "/")

	current := ""
	for _, part := range parts {
		current += "/" + part
		prefixes = append(prefixes, current)
	}
	return prefixes
}
