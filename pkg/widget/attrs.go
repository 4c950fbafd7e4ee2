package widget

import (
	"encoding/json"
	"html"
	"strings"
)

// SSRDataAttr is the reserved attribute carrying server-fetched widget
// data for client hydration. It is never parsed as a widget parameter,
// and any pre-existing occurrence is dropped before the tag is rewritten.
const SSRDataAttr = "data-ssr-data"

// parseAttrs parses a raw attribute string into a parameter map.
//
// Attribute names are kebab-case in markup and camelCase in the map.
// Values are coerced through JSON where possible: numbers, booleans, null,
// objects and arrays parse to their native type; anything else stays the
// raw (entity-unescaped) string. A bare attribute with no value becomes
// the empty string.
func parseAttrs(raw string) map[string]any {
	params := make(map[string]any)

	for _, attr := range splitAttrs(raw) {
		name, value, hasValue := attr.name, attr.value, attr.hasValue
		if name == SSRDataAttr {
			continue
		}
		key := kebabToCamel(name)
		if !hasValue {
			params[key] = ""
			continue
		}
		params[key] = coerceValue(html.UnescapeString(value))
	}
	return params
}

// coerceValue attempts JSON parsing, keeping the raw string on failure.
func coerceValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// rawAttr is one attribute token before name/value interpretation.
type rawAttr struct {
	name     string
	value    string
	hasValue bool
}

// splitAttrs tokenizes an attribute string: name, optionally followed by
// "=" and a quoted or bare value. Quoting with either '"' or '\'' is
// honored; malformed trailing tokens are kept as bare attributes.
func splitAttrs(raw string) []rawAttr {
	var attrs []rawAttr

	i := 0
	n := len(raw)
	for i < n {
		for i < n && isSpaceByte(raw[i]) {
			i++
		}
		if i >= n {
			break
		}

		nameStart := i
		for i < n && raw[i] != '=' && !isSpaceByte(raw[i]) {
			i++
		}
		name := raw[nameStart:i]
		if name == "" || name == "/" {
			i++
			continue
		}

		if i >= n || raw[i] != '=' {
			attrs = append(attrs, rawAttr{name: name})
			continue
		}
		i++ // consume "="

		if i < n && (raw[i] == '"' || raw[i] == '\'') {
			quote := raw[i]
			i++
			valStart := i
			for i < n && raw[i] != quote {
				i++
			}
			attrs = append(attrs, rawAttr{name: name, value: raw[valStart:i], hasValue: true})
			if i < n {
				i++ // consume closing quote
			}
			continue
		}

		valStart := i
		for i < n && !isSpaceByte(raw[i]) {
			i++
		}
		attrs = append(attrs, rawAttr{name: name, value: raw[valStart:i], hasValue: true})
	}
	return attrs
}

// stripReservedAttr removes any data-ssr-data attribute from a raw
// attribute string so a rewritten tag carries exactly one, freshly
// serialized.
func stripReservedAttr(raw string) string {
	attrs := splitAttrs(raw)
	hasReserved := false
	for _, a := range attrs {
		if a.name == SSRDataAttr {
			hasReserved = true
			break
		}
	}
	if !hasReserved {
		return raw
	}

	var b strings.Builder
	for _, a := range attrs {
		if a.name == SSRDataAttr {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.name)
		if a.hasValue {
			b.WriteString(`="`)
			b.WriteString(a.value)
			b.WriteString(`"`)
		}
	}
	return b.String()
}

// kebabToCamel converts a kebab-case attribute name to a camelCase
// parameter key: "coin-id" -> "coinId".
func kebabToCamel(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
