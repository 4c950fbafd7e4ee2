package render

import (
	"context"
	"log/slog"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/widget"
)

// MarkdownConfig configures the Markdown pipeline.
type MarkdownConfig struct {
	// Core is the route core. Required.
	Core *router.Core

	// Widgets resolves widget tags in composed output. The Markdown
	// renderer convention lowers fenced widget blocks to <widget-*>
	// markup before this runs, so both pipelines share one resolver.
	// Optional.
	Widgets *widget.Resolver

	// PathPrefix is stripped from incoming URLs before matching.
	// Defaults to "/md".
	PathPrefix string

	// BasePath is handed to components through their context.
	BasePath string

	// RedirectStatus defaults to 301.
	RedirectStatus int

	// Logger defaults to the core's logger.
	Logger *slog.Logger
}

// MarkdownSSR is the server-side Markdown pipeline. It mirrors the HTML
// state machine, substituting RenderMarkdown for RenderHTML and the
// fenced router-slot block for the <router-slot> placeholder.
type MarkdownSSR struct {
	engine *engine
}

// NewMarkdown creates the Markdown renderer.
func NewMarkdown(cfg MarkdownConfig) *MarkdownSSR {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/md"
	}
	if cfg.RedirectStatus == 0 {
		cfg.RedirectStatus = DefaultRedirectStatus
	}
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Core.Logger()
	}

	return &MarkdownSSR{
		engine: &engine{
			core:           cfg.Core,
			mode:           &markdownMode{widgets: cfg.Widgets, logger: logger},
			pathPrefix:     cfg.PathPrefix,
			basePath:       cfg.BasePath,
			redirectStatus: cfg.RedirectStatus,
			logger:         logger,
		},
	}
}

// Render implements Renderer.
func (r *MarkdownSSR) Render(ctx context.Context, rawURL string) Result {
	return r.engine.Render(ctx, rawURL)
}

// markdownMode is the Markdown-specific half of the shared engine.
type markdownMode struct {
	widgets *widget.Resolver
	logger  *slog.Logger
}

func (m *markdownMode) name() string { return "markdown" }
func (m *markdownMode) slot() string { return component.SlotMarkdown }

func (m *markdownMode) render(comp *component.Component, data, params any, cc component.Context) (string, error) {
	if comp.RenderMarkdown == nil {
		return component.SlotMarkdown, nil
	}
	return comp.RenderMarkdown(data, params, cc)
}

func (m *markdownMode) renderError(comp *component.Component, err error, cc component.Context) (string, bool) {
	if comp.RenderMarkdownError == nil {
		return "", false
	}
	out, rerr := comp.RenderMarkdownError(err, cc)
	if rerr != nil {
		m.logger.Debug("render: markdown error boundary failed", "error", rerr)
		return "", false
	}
	return out, true
}

func (m *markdownMode) inlineStatus(code int, detail string) string {
	return inlineStatusMarkdown(code, detail)
}

func (m *markdownMode) redirectBody(to string) string {
	return redirectBodyMarkdown(to)
}

func (m *markdownMode) finalize(ctx context.Context, content string, leaf component.Context, load widget.ModuleLoadFunc) string {
	if m.widgets != nil {
		content = m.widgets.ResolveWith(ctx, content, leaf, load)
	}
	return content
}
