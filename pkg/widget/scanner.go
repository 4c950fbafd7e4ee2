package widget

import "strings"

// tagMatch is one balanced widget tag found in markup.
type tagMatch struct {
	// tagName is the full tag, e.g. "widget-coin-price".
	tagName string

	// rawAttrs is the attribute string exactly as written, without the
	// surrounding whitespace.
	rawAttrs string

	// inner is the content between the open and close tags.
	inner string

	// start and end bound the whole tag in the scanned string,
	// [start, end).
	start int
	end   int
}

// scanTags finds balanced <widget-*>...</widget-*> pairs in document
// order. Pairing uses the tag name itself, so differently named tags that
// happen to interleave are never falsely paired, and nested tags of the
// same name are skipped over by depth counting. Open tags without a
// matching close, and self-closing tags, are not matched.
func scanTags(s string) []tagMatch {
	var matches []tagMatch

	pos := 0
	for {
		open := strings.Index(s[pos:], "<"+TagPrefix)
		if open < 0 {
			return matches
		}
		open += pos

		name, attrEnd, selfClosing, ok := parseOpenTag(s, open)
		if !ok {
			pos = open + 1
			continue
		}
		if selfClosing {
			pos = attrEnd
			continue
		}

		innerStart := attrEnd
		innerEnd, closeEnd, ok := findClose(s, innerStart, name)
		if !ok {
			// Unmatched open tag: leave it and keep scanning after it.
			pos = attrEnd
			continue
		}

		rawAttrs := strings.TrimSpace(s[open+1+len(name) : attrEnd-1])
		matches = append(matches, tagMatch{
			tagName:  name,
			rawAttrs: rawAttrs,
			inner:    s[innerStart:innerEnd],
			start:    open,
			end:      closeEnd,
		})
		pos = closeEnd
	}
}

// parseOpenTag parses an open tag starting at "<" (index start). Returns
// the full tag name, the index just past the closing ">", and whether the
// tag was self-closing.
func parseOpenTag(s string, start int) (name string, end int, selfClosing, ok bool) {
	i := start + 1
	nameStart := i
	for i < len(s) && isTagNameByte(s[i]) {
		i++
	}
	name = s[nameStart:i]
	if !strings.HasPrefix(name, TagPrefix) || len(name) == len(TagPrefix) {
		return "", 0, false, false
	}
	// The name must terminate at whitespace, "/" or ">".
	if i >= len(s) {
		return "", 0, false, false
	}

	// Scan attributes respecting quoted values.
	var quote byte
	for ; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			selfClosing = i > start && s[i-1] == '/'
			return name, i + 1, selfClosing, true
		case '<':
			// Broken markup; not a tag.
			return "", 0, false, false
		}
	}
	return "", 0, false, false
}

// findClose locates the matching close tag for name, counting nested open
// tags of the same name. Returns the inner end (start of the close tag)
// and the index just past the close tag.
func findClose(s string, from int, name string) (innerEnd, closeEnd int, ok bool) {
	openToken := "<" + name
	closeToken := "</" + name + ">"

	depth := 0
	i := from
	for i < len(s) {
		next := strings.Index(s[i:], "<")
		if next < 0 {
			return 0, 0, false
		}
		i += next

		if strings.HasPrefix(s[i:], closeToken) {
			if depth == 0 {
				return i, i + len(closeToken), true
			}
			depth--
			i += len(closeToken)
			continue
		}
		if strings.HasPrefix(s[i:], openToken) && isTagBoundary(s, i+len(openToken)) {
			if _, end, selfClosing, parsed := parseOpenTag(s, i); parsed {
				if !selfClosing {
					depth++
				}
				i = end
				continue
			}
		}
		i++
	}
	return 0, 0, false
}

// isTagBoundary reports whether the byte at i (if any) terminates a tag
// name, so "widget-coin" does not count as an opening of "widget-co".
func isTagBoundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	return !isTagNameByte(s[i])
}

// isTagNameByte is the widget tag name charset: lowercase ASCII letters,
// digits and hyphens.
func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-'
}
