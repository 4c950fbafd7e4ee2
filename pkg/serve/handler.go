// Package serve adapts the render pipelines to net/http. It is a thin
// collaborator over the core: all routing semantics live in the render
// and router packages; this package only maps requests to render calls
// and render results to responses.
package serve

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velo-dev/velo/pkg/render"
)

// Config configures the HTTP adapter.
type Config struct {
	// HTML is the HTML pipeline. Required.
	HTML render.Renderer

	// Markdown is the Markdown pipeline. Optional; without it,
	// Markdown negotiation is disabled.
	Markdown render.Renderer

	// HTMLPrefix mounts the HTML pipeline (default "/html").
	HTMLPrefix string

	// MarkdownPrefix mounts the Markdown pipeline (default "/md").
	MarkdownPrefix string

	// EnableMetrics exposes Prometheus metrics at /metrics.
	EnableMetrics bool

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// handler is the chi-backed HTTP adapter.
type handler struct {
	cfg Config
}

// New builds the http.Handler serving the SSR pipelines.
//
// Routing:
//
//	GET {HTMLPrefix}/*      HTML pipeline
//	GET {MarkdownPrefix}/*  Markdown pipeline
//	GET /metrics            Prometheus (when enabled)
//	GET /*                  negotiated: text/markdown clients get the
//	                        Markdown pipeline, everyone else HTML
func New(cfg Config) http.Handler {
	if cfg.HTMLPrefix == "" {
		cfg.HTMLPrefix = "/html"
	}
	if cfg.MarkdownPrefix == "" {
		cfg.MarkdownPrefix = "/md"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := &handler{cfg: cfg}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get(cfg.HTMLPrefix, h.serveHTML)
	r.Get(cfg.HTMLPrefix+"/*", h.serveHTML)
	if cfg.Markdown != nil {
		r.Get(cfg.MarkdownPrefix, h.serveMarkdown)
		r.Get(cfg.MarkdownPrefix+"/*", h.serveMarkdown)
	}
	r.Get("/*", h.serveNegotiated)

	return r
}

func (h *handler) serveHTML(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.cfg.HTML.Render(r.Context(), r.URL.RequestURI()), "text/html; charset=utf-8")
}

func (h *handler) serveMarkdown(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.cfg.Markdown.Render(r.Context(), r.URL.RequestURI()), "text/markdown; charset=utf-8")
}

// serveNegotiated routes bare paths by Accept header so text/LLM clients
// can fetch Markdown without the prefix.
func (h *handler) serveNegotiated(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Markdown != nil && strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		h.serveMarkdown(w, r)
		return
	}
	h.serveHTML(w, r)
}

// write maps a render result onto the response: redirects get a Location
// header, everything carries the render status and body.
func (h *handler) write(w http.ResponseWriter, r *http.Request, res render.Result, contentType string) {
	if res.Redirect != "" {
		w.Header().Set("Location", res.Redirect)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(res.Status)
	if _, err := w.Write([]byte(res.Content)); err != nil {
		h.cfg.Logger.Debug("serve: write failed", "path", r.URL.Path, "error", err)
	}
}
