// Package velo is a universal routing and rendering core: one declarative
// route tree served simultaneously as a single-page-application shell, as
// server-rendered HTML, and as server-rendered Markdown for text and LLM
// clients.
//
// Create an App with velo.New():
//
//	app := velo.New(velo.Config{
//	    Manifest: manifest,
//	    Widgets:  widgets,
//	    Markdown: markdown.New(markdown.Config{}),
//	})
//
//	res := app.HTML().Render(ctx, "/html/blog/42")
package velo

import (
	"context"
	"log/slog"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/render"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/widget"
)

// App wires the route core, the widget registry and the two SSR
// pipelines into one entry point. The manifest it serves can be swapped
// atomically at any time; in-flight renders finish against the snapshot
// they started with.
type App struct {
	core     *router.Core
	registry *widget.Registry
	html     *render.HTMLRenderer
	markdown *render.MarkdownSSR
	config   Config
	logger   *slog.Logger
}

// New creates a Velo application from the given configuration.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	core := router.NewCore(router.CoreConfig{
		Manifest:        cfg.Manifest,
		FileLoader:      cfg.FileLoader,
		ContextProvider: cfg.ContextProvider,
		Logger:          logger,
	})

	app := &App{
		core:     core,
		registry: widget.NewRegistry(cfg.Widgets...),
		config:   cfg,
		logger:   logger,
	}

	resolver := widget.NewResolver(widget.ResolverConfig{
		Registry:        app.registry,
		Load:            app.loadModule,
		FileLoader:      cfg.FileLoader,
		ContextProvider: cfg.ContextProvider,
		MaxDepth:        cfg.MaxWidgetDepth,
		Logger:          logger,
	})

	app.html = render.NewHTML(render.HTMLConfig{
		Core:           core,
		Widgets:        resolver,
		Markdown:       cfg.Markdown,
		PathPrefix:     cfg.HTMLPrefix,
		BasePath:       cfg.BasePath,
		RedirectStatus: cfg.RedirectStatus,
		Logger:         logger,
	})
	app.markdown = render.NewMarkdown(render.MarkdownConfig{
		Core:           core,
		Widgets:        resolver,
		PathPrefix:     cfg.MarkdownPrefix,
		BasePath:       cfg.BasePath,
		RedirectStatus: cfg.RedirectStatus,
		Logger:         logger,
	})

	return app
}

// loadModule is the resolver's fallback loader for standalone Resolve
// calls made outside a render pass. Render passes bind widget loads to
// their own manifest snapshot instead, so a mid-render swap never mixes
// manifest generations within one pass.
func (a *App) loadModule(ctx context.Context, path string) (*component.Module, error) {
	return a.core.Snapshot().LoadModule(ctx, path)
}

// HTML returns the HTML pipeline.
func (a *App) HTML() render.Renderer { return a.html }

// Markdown returns the Markdown pipeline.
func (a *App) Markdown() render.Renderer { return a.markdown }

// Core returns the route core.
func (a *App) Core() *router.Core { return a.core }

// Widgets returns the widget registry.
func (a *App) Widgets() *widget.Registry { return a.registry }

// SwapManifest atomically replaces the route manifest, e.g. after a
// rebuild. Renders already in flight keep their snapshot.
func (a *App) SwapManifest(m *router.Manifest) {
	a.core.Swap(m)
}

// Subscribe registers a navigation-state observer and returns its
// removal function.
func (a *App) Subscribe(fn func(router.Event)) func() {
	return a.core.Events().AddListener(fn)
}
