package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/widget"
)

// Result is what a render pass produces for the HTTP layer: the response
// body, an HTTP-style status, the innermost title, and the redirect
// target for redirect routes. A render never fails past this value.
type Result struct {
	Content  string
	Status   int
	Title    string
	Redirect string
}

// Renderer renders a URL to a complete response. Both the HTML and the
// Markdown pipelines implement it.
type Renderer interface {
	Render(ctx context.Context, rawURL string) Result
}

// DefaultRedirectStatus is used when a redirect module does not specify
// its own status.
const DefaultRedirectStatus = http.StatusMovedPermanently

// mode is the per-pipeline behavior plugged into the shared engine: slot
// markup, component method selection, inline fallbacks, and the
// post-composition pass (Markdown expansion and widget resolution).
type mode interface {
	name() string
	slot() string
	render(comp *component.Component, data, params any, cc component.Context) (string, error)
	renderError(comp *component.Component, err error, cc component.Context) (string, bool)
	inlineStatus(code int, detail string) string
	redirectBody(to string) string
	finalize(ctx context.Context, content string, leaf component.Context, load widget.ModuleLoadFunc) string
}

// engine drives the render state machine shared by both pipelines:
//
//	Matching → {NotFound, Redirect, Rendering}
//	Rendering → Success | ErrorRecovery → {StatusPage, InlineFallback}
type engine struct {
	core           *router.Core
	mode           mode
	pathPrefix     string
	basePath       string
	redirectStatus int
	logger         *slog.Logger
}

// Render resolves and renders one request URL. Every failure path
// terminates in a returned Result; nothing escapes to the caller.
func (e *engine) Render(ctx context.Context, rawURL string) Result {
	snap := e.core.Snapshot()

	u, err := url.Parse(rawURL)
	if err != nil {
		e.logger.Debug("render: unparseable url", "renderer", e.mode.name(), "url", rawURL)
		res := e.renderStatus(ctx, snap, rawURL, nil, http.StatusNotFound, "")
		e.emit(rawURL, "", res.Status)
		return res
	}

	path := e.stripPrefix(u.Path)
	matched := snap.Match(path)
	if matched == nil {
		res := e.renderStatus(ctx, snap, path, u.Query(), http.StatusNotFound, "")
		e.emit(path, "", res.Status)
		return res
	}
	matched.SearchParams = u.Query()

	if matched.Route.Type == router.RouteRedirect {
		res := e.renderRedirect(ctx, snap, matched, path)
		e.emit(path, matched.Route.Pattern, res.Status)
		return res
	}

	res := e.renderMatched(ctx, snap, matched, path, http.StatusOK, true)
	e.emit(path, matched.Route.Pattern, res.Status)
	return res
}

// stripPrefix removes the configured SSR path prefix from an incoming
// path, normalizing the remainder to start with "/".
func (e *engine) stripPrefix(path string) string {
	if e.pathPrefix == "" || e.pathPrefix == "/" {
		return path
	}
	if path == e.pathPrefix {
		return "/"
	}
	if strings.HasPrefix(path, e.pathPrefix+"/") {
		return path[len(e.pathPrefix):]
	}
	return path
}

// renderRedirect handles a redirect route: its module supplies the target
// and status, and the body is a meta-refresh document so even a client
// ignoring the status follows along.
func (e *engine) renderRedirect(ctx context.Context, snap *router.Manifest, matched *router.MatchedRoute, path string) Result {
	mod, err := snap.LoadModule(ctx, matched.Route.ModulePath)
	if err != nil || mod.Redirect == nil {
		if err == nil {
			err = fmt.Errorf("render: redirect route %s has no redirect module", matched.Route.Pattern)
		}
		return e.recoverError(ctx, snap, path, matched.SearchParams, err)
	}

	status := mod.Redirect.Status
	if status == 0 {
		status = e.redirectStatus
	}
	return Result{
		Content:  e.mode.redirectBody(mod.Redirect.To),
		Status:   status,
		Redirect: mod.Redirect.To,
	}
}

// renderMatched runs the Rendering state for a matched route. When
// allowRecovery is false (status pages rendered from inside error handling) a
// failure falls straight through to the inline fallback, which keeps
// recovery from looping.
func (e *engine) renderMatched(ctx context.Context, snap *router.Manifest, matched *router.MatchedRoute, path string, status int, allowRecovery bool) Result {
	content, title, leafCC, err := e.renderHierarchy(ctx, snap, matched, path)
	if err != nil {
		if !allowRecovery {
			// A broken status page falls back inline at its own code.
			return Result{
				Content: e.mode.inlineStatus(status, err.Error()),
				Status:  status,
			}
		}
		return e.recoverError(ctx, snap, path, matched.SearchParams, err)
	}

	// Only the outermost completed render strips unconsumed slots; a
	// partial hierarchy keeps inner ones as literal markup. Widget module
	// loads go through this render's snapshot so a mid-render manifest
	// swap cannot split the pass across generations.
	content = strings.ReplaceAll(content, e.mode.slot(), "")
	content = e.mode.finalize(ctx, content, leafCC, snap.LoadModule)

	return Result{Content: content, Status: status, Title: title}
}

// renderHierarchy walks the matched route's ancestor chain root to leaf,
// rendering each level and splicing its output into the first unconsumed
// slot of the accumulated result. Returns the composed content, the
// winning (innermost) title, and the leaf-level context used for widget
// resolution.
func (e *engine) renderHierarchy(ctx context.Context, snap *router.Manifest, matched *router.MatchedRoute, path string) (string, string, component.Context, error) {
	chain := e.core.BuildHierarchy(snap, matched.Route.Pattern)
	// Status pages are registered by code, not pattern, so the chain
	// may not terminate in the matched route; anchor it at the leaf.
	if len(chain) == 0 || chain[len(chain)-1].Pattern != matched.Route.Pattern {
		chain = append(chain, matched.Route)
	}

	var (
		acc    string
		title  string
		leafCC component.Context
	)
	for _, rc := range chain {
		if err := ctx.Err(); err != nil {
			return "", "", leafCC, err
		}

		isLeaf := rc.Pattern == matched.Route.Pattern
		cc, err := e.core.BuildContext(ctx, router.RouteInfo{
			Pathname:     path,
			Pattern:      rc.Pattern,
			Params:       matched.Params,
			SearchParams: matched.SearchParams,
			IsLeaf:       isLeaf,
			BasePath:     e.basePath,
		}, rc)
		if err != nil {
			return "", "", leafCC, fmt.Errorf("render %s: %w", rc.Pattern, err)
		}
		if isLeaf {
			leafCC = cc
		}

		comp, err := e.componentFor(ctx, snap, rc, cc)
		if err != nil {
			return "", "", leafCC, fmt.Errorf("render %s: %w", rc.Pattern, err)
		}

		if comp.ValidateParams != nil {
			if err := comp.ValidateParams(matched.Params); err != nil {
				return "", "", leafCC, fmt.Errorf("render %s: %w", rc.Pattern, err)
			}
		}

		var data any
		if comp.GetData != nil {
			data, err = comp.GetData(ctx, matched.Params, cc)
			if err != nil {
				return "", "", leafCC, fmt.Errorf("render %s: %w", rc.Pattern, err)
			}
		}

		out, err := e.mode.render(comp, data, matched.Params, cc)
		if err != nil {
			return "", "", leafCC, fmt.Errorf("render %s: %w", rc.Pattern, err)
		}

		if comp.GetTitle != nil {
			if t := comp.GetTitle(matched.Params, cc); t != "" {
				title = t
			}
		}

		if acc == "" {
			acc = out
		} else {
			acc = e.splice(acc, out, rc.Pattern)
		}
	}
	return acc, title, leafCC, nil
}

// splice injects child output into the first unconsumed slot of the
// accumulated result. A parent without a slot simply does not consume its
// child; the child's output is dropped and the composition continues.
func (e *engine) splice(acc, child, pattern string) string {
	slot := e.mode.slot()
	idx := strings.Index(acc, slot)
	if idx < 0 {
		e.logger.Debug("render: parent has no slot for child",
			"renderer", e.mode.name(), "pattern", pattern)
		return acc
	}
	return acc[:idx] + child + acc[idx+len(slot):]
}

// componentFor resolves the component rendering one hierarchy level: the
// route's module when it has one, otherwise a component derived from its
// companion files, otherwise the bare-slot pass-through for purely
// structural levels.
func (e *engine) componentFor(ctx context.Context, snap *router.Manifest, rc *router.RouteConfig, cc component.Context) (*component.Component, error) {
	if rc.ModulePath == "" {
		if cc.Files != nil {
			return component.FromFiles(cc.Files), nil
		}
		return component.PassThrough(), nil
	}

	mod, err := snap.LoadModule(ctx, rc.ModulePath)
	if err != nil {
		return nil, err
	}
	if mod.Component == nil {
		return nil, fmt.Errorf("module %s has no component", rc.ModulePath)
	}
	return mod.Component, nil
}

// recoverError maps a rendering failure to a response. A typed status
// signal resolves through the matching status page; anything else walks
// the nearest error boundary, then the root error handler, then the
// inline 500.
func (e *engine) recoverError(ctx context.Context, snap *router.Manifest, path string, query url.Values, err error) Result {
	var status *StatusError
	if errors.As(err, &status) {
		return e.renderStatus(ctx, snap, path, query, status.Code, status.Message)
	}

	e.logger.Error("render: recovering from failure",
		"renderer", e.mode.name(), "path", path, "error", err)

	cc := component.Context{Pathname: path, SearchParams: query, BasePath: e.basePath}

	if boundary := snap.FindErrorBoundary(path); boundary != nil {
		if out, ok := e.renderBoundary(ctx, snap, boundary.ModulePath, err, cc); ok {
			return Result{Content: out, Status: http.StatusInternalServerError}
		}
	}

	if handler := snap.ErrorHandler(); handler != nil && handler.ModulePath != "" {
		if out, ok := e.renderBoundary(ctx, snap, handler.ModulePath, err, cc); ok {
			return Result{Content: out, Status: http.StatusInternalServerError}
		}
	}

	return Result{
		Content: e.mode.inlineStatus(http.StatusInternalServerError, err.Error()),
		Status:  http.StatusInternalServerError,
	}
}

// renderBoundary loads a boundary or root-handler module and asks it to
// render the failure. A boundary that itself fails is skipped rather than
// escalated.
func (e *engine) renderBoundary(ctx context.Context, snap *router.Manifest, modulePath string, cause error, cc component.Context) (string, bool) {
	mod, err := snap.LoadModule(ctx, modulePath)
	if err != nil || mod.Component == nil {
		e.logger.Debug("render: error boundary unavailable",
			"module", modulePath, "error", err)
		return "", false
	}
	out, ok := e.mode.renderError(mod.Component, cause, cc)
	if !ok {
		return "", false
	}
	return out, true
}

// renderStatus renders the status page registered for code, or the
// minimal inline page when none exists. Status pages render without
// further error recovery so a broken 500 page cannot recurse.
func (e *engine) renderStatus(ctx context.Context, snap *router.Manifest, path string, query url.Values, code int, detail string) Result {
	sp := snap.StatusPage(code)
	if sp == nil {
		return Result{Content: e.mode.inlineStatus(code, detail), Status: code}
	}

	matched := &router.MatchedRoute{
		Route:        sp,
		Params:       make(component.Params),
		SearchParams: query,
	}
	return e.renderMatched(ctx, snap, matched, path, code, false)
}

// emit publishes the render outcome on the core's event bus.
func (e *engine) emit(path, pattern string, status int) {
	e.core.Events().Emit(router.Event{
		Type:     router.EventRender,
		Pathname: path,
		Pattern:  pattern,
		Status:   status,
	})
}
