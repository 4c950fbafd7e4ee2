package component

import "net/url"

// Context is the per-render, per-route-level value passed to every
// component call. It is created fresh for each level of each request and
// never shared across requests.
//
// Context is a value type on purpose: a context-provider hook extends it by
// copying (the Go equivalent of spreading) and returning the copy, so the
// base value observed by other levels is never mutated in place.
type Context struct {
	// Pathname is the concrete request path, e.g. "/blog/42".
	Pathname string

	// Pattern is the route pattern being rendered at this level,
	// e.g. "/blog/:id".
	Pattern string

	// Params are the parameters extracted by the matcher.
	Params Params

	// SearchParams carries the query string of the request, if any.
	SearchParams url.Values

	// Files holds pre-loaded companion content for this level, or nil.
	Files *FileContent

	// IsLeaf is true only for the matched leaf route, false for
	// ancestor layouts.
	IsLeaf bool

	// BasePath is the public prefix the response is served under
	// (e.g. "/html"), for components that emit absolute links.
	BasePath string

	// Values carries provider-attached extensions keyed by string.
	// A ContextProvider that wants to add data puts it here on its
	// extended copy.
	Values map[string]any
}

// ContextProvider extends a base context before it reaches a component.
// Implementations must return a value that structurally extends base: start
// from base, never from a zero Context. The core depends on this but does
// not enforce it.
type ContextProvider func(base Context) Context

// WithValue returns a copy of the context with key set in Values. The
// receiver is not modified.
func (c Context) WithValue(key string, value any) Context {
	next := c
	next.Values = make(map[string]any, len(c.Values)+1)
	for k, v := range c.Values {
		next.Values[k] = v
	}
	next.Values[key] = value
	return next
}

// Value returns the provider-attached value for key, or nil.
func (c Context) Value(key string) any {
	if c.Values == nil {
		return nil
	}
	return c.Values[key]
}
