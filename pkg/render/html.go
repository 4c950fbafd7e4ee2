package render

import (
	"context"
	"html"
	"log/slog"
	"strings"
	"sync"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/widget"
)

// MarkdownRenderer is the injected capability that expands embedded
// Markdown during HTML rendering. Render must be synchronous and must
// sanitize its own output; the renderer includes it verbatim.
type MarkdownRenderer interface {
	Render(markdown string) string
}

// InitializingMarkdownRenderer is implemented by Markdown renderers that
// need one-time setup. Init is awaited once, lazily, before first use.
type InitializingMarkdownRenderer interface {
	MarkdownRenderer
	Init(ctx context.Context) error
}

// HTMLConfig configures the HTML pipeline.
type HTMLConfig struct {
	// Core is the route core. Required.
	Core *router.Core

	// Widgets resolves widget tags in composed markup. Optional; when
	// nil, widget tags are left as literal markup.
	Widgets *widget.Resolver

	// Markdown expands <mark-down> wrappers. Optional; when nil the
	// wrappers are left untouched, a documented degradation rather
	// than an error.
	Markdown MarkdownRenderer

	// PathPrefix is stripped from incoming URLs before matching.
	// Defaults to "/html".
	PathPrefix string

	// BasePath is handed to components through their context for
	// emitting absolute links.
	BasePath string

	// RedirectStatus is the default status of redirect routes that do
	// not specify one. Defaults to 301.
	RedirectStatus int

	// Logger is the structured logger. Defaults to the core's logger.
	Logger *slog.Logger
}

// HTMLRenderer is the server-side HTML pipeline.
type HTMLRenderer struct {
	engine *engine
}

// NewHTML creates the HTML renderer.
func NewHTML(cfg HTMLConfig) *HTMLRenderer {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/html"
	}
	if cfg.RedirectStatus == 0 {
		cfg.RedirectStatus = DefaultRedirectStatus
	}
	logger := cfg.Logger
	if logger == nil {
		logger = cfg.Core.Logger()
	}

	m := &htmlMode{
		widgets:  cfg.Widgets,
		markdown: cfg.Markdown,
		logger:   logger,
	}
	return &HTMLRenderer{
		engine: &engine{
			core:           cfg.Core,
			mode:           m,
			pathPrefix:     cfg.PathPrefix,
			basePath:       cfg.BasePath,
			redirectStatus: cfg.RedirectStatus,
			logger:         logger,
		},
	}
}

// Render implements Renderer.
func (r *HTMLRenderer) Render(ctx context.Context, rawURL string) Result {
	return r.engine.Render(ctx, rawURL)
}

// htmlMode is the HTML-specific half of the shared engine.
type htmlMode struct {
	widgets  *widget.Resolver
	markdown MarkdownRenderer
	logger   *slog.Logger

	initMu   sync.Mutex
	initDone bool
}

func (m *htmlMode) name() string { return "html" }
func (m *htmlMode) slot() string { return component.SlotHTML }

func (m *htmlMode) render(comp *component.Component, data, params any, cc component.Context) (string, error) {
	if comp.RenderHTML == nil {
		return component.SlotHTML, nil
	}
	return comp.RenderHTML(data, params, cc)
}

func (m *htmlMode) renderError(comp *component.Component, err error, cc component.Context) (string, bool) {
	if comp.RenderError == nil {
		return "", false
	}
	out, rerr := comp.RenderError(err, cc)
	if rerr != nil {
		m.logger.Debug("render: error boundary failed", "error", rerr)
		return "", false
	}
	return out, true
}

func (m *htmlMode) inlineStatus(code int, detail string) string {
	return inlineStatusHTML(code, detail)
}

func (m *htmlMode) redirectBody(to string) string {
	return redirectBodyHTML(to)
}

// finalize expands embedded Markdown, then resolves widget tags using the
// leaf route's context, so widgets in a shared layout address the
// actually requested route. load is the render pass's snapshot-bound
// module loader.
func (m *htmlMode) finalize(ctx context.Context, content string, leaf component.Context, load widget.ModuleLoadFunc) string {
	content = m.expandMarkdown(ctx, content)
	if m.widgets != nil {
		content = m.widgets.ResolveWith(ctx, content, leaf, load)
	}
	return content
}

// initMarkdown runs the renderer's one-time setup before first use. A
// failed attempt is not latched: the next render retries, so a transient
// failure (a canceled first request, say) does not disable Markdown
// expansion for the renderer's lifetime.
func (m *htmlMode) initMarkdown(ctx context.Context, init InitializingMarkdownRenderer) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()
	if m.initDone {
		return nil
	}
	if err := init.Init(ctx); err != nil {
		return err
	}
	m.initDone = true
	return nil
}

// expandMarkdown replaces every <mark-down> wrapper with the configured
// renderer's output for its unescaped content. Without a renderer the
// wrappers stay as-is.
func (m *htmlMode) expandMarkdown(ctx context.Context, content string) string {
	if m.markdown == nil {
		return content
	}
	if !strings.Contains(content, component.MarkdownOpen) {
		return content
	}

	if init, ok := m.markdown.(InitializingMarkdownRenderer); ok {
		if err := m.initMarkdown(ctx, init); err != nil {
			m.logger.Error("render: markdown renderer init failed", "error", err)
			return content
		}
	}

	var b strings.Builder
	rest := content
	for {
		open := strings.Index(rest, component.MarkdownOpen)
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.Index(rest[open:], component.MarkdownClose)
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end += open

		b.WriteString(rest[:open])
		inner := rest[open+len(component.MarkdownOpen) : end]
		b.WriteString(m.markdown.Render(html.UnescapeString(inner)))
		rest = rest[end+len(component.MarkdownClose):]
	}
}
