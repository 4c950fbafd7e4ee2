package velo

import (
	"log/slog"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/render"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/widget"
)

// Config is the main application configuration: the route manifest, the
// widget set, and the injected collaborators the render core depends on.
type Config struct {
	// Manifest is the compiled route manifest. Required.
	Manifest *router.Manifest

	// Widgets registers the embeddable widgets.
	Widgets []widget.ManifestEntry

	// Markdown expands <mark-down> wrappers during HTML rendering.
	// Optional; without it the wrappers are left unexpanded.
	Markdown render.MarkdownRenderer

	// FileLoader loads companion content files for routes and widgets.
	// Optional.
	FileLoader component.FileLoader

	// ContextProvider extends every component context. Implementations
	// must extend the base value they receive. Optional.
	ContextProvider component.ContextProvider

	// HTMLPrefix is the SSR path prefix of the HTML pipeline.
	// Default "/html".
	HTMLPrefix string

	// MarkdownPrefix is the SSR path prefix of the Markdown pipeline.
	// Default "/md".
	MarkdownPrefix string

	// BasePath is exposed to components for emitting absolute links.
	BasePath string

	// RedirectStatus is the default redirect status. Default 301.
	RedirectStatus int

	// MaxWidgetDepth bounds widget-in-widget recursion. Default 3.
	MaxWidgetDepth int

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}
