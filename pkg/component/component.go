package component

import "context"

// Params holds the named parameters extracted from a matched route,
// e.g. {"id": "42"} for /blog/:id matched against /blog/42.
type Params map[string]string

// Component is the server-side rendering capability implemented by pages
// and widgets. Required behavior lives in the three core fields; everything
// else is optional and nil when absent.
//
// RenderHTML and RenderMarkdown must be pure functions of their arguments.
// The renderers may invoke them more than once per request (the HTML and
// Markdown pipelines run as independent consumers) and rely on getting
// identical output for identical input.
type Component struct {
	// GetData fetches the data the component renders. It must honor ctx
	// cancellation. A nil result with a nil error is valid and means
	// "render without data".
	//
	// Page components receive Params; widget components receive the
	// typed map[string]any parsed from their tag attributes.
	GetData func(ctx context.Context, params any, cc Context) (any, error)

	// RenderHTML renders the component to an HTML fragment.
	RenderHTML func(data any, params any, cc Context) (string, error)

	// RenderMarkdown renders the component to a Markdown fragment.
	RenderMarkdown func(data any, params any, cc Context) (string, error)

	// GetTitle returns the document title contributed by this component.
	// During a root-to-leaf walk the innermost title wins.
	GetTitle func(params any, cc Context) string

	// ValidateParams rejects structurally invalid parameters before
	// GetData runs. Optional.
	ValidateParams func(params any) error

	// RenderError renders recovery HTML when a descendant render fails.
	// Only meaningful on error-boundary components.
	RenderError func(err error, cc Context) (string, error)

	// RenderMarkdownError is the Markdown counterpart of RenderError.
	RenderMarkdownError func(err error, cc Context) (string, error)
}

// Redirect is the module shape of a redirect route.
type Redirect struct {
	// To is the redirect target path or URL.
	To string

	// Status is the HTTP status to report. Zero means the renderer's
	// configured default (301).
	Status int
}

// Module is the result of loading a route or widget module: exactly one of
// Component or Redirect is set, mirroring a module's default export.
type Module struct {
	Component *Component
	Redirect  *Redirect
}

// ModuleLoader resolves a module path to its loaded module. Loaders are
// supplied by the manifest; the core never resolves paths itself.
type ModuleLoader func(ctx context.Context) (*Module, error)

// FileLoader loads the companion content files declared for a route or
// widget. name identifies the owning route or widget; refs declares which
// files exist.
type FileLoader func(ctx context.Context, name string, refs FileRefs) (*FileContent, error)
