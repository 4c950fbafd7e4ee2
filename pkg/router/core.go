package router

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/velo-dev/velo/pkg/component"
)

// DefaultRootPattern is the pattern of the synthetic root route used when
// no explicit "/" route is registered. It renders a bare slot so the rest
// of the hierarchy passes through.
const DefaultRootPattern = "/"

// defaultRootRoute is the synthetic bare-slot root. It has no module; the
// renderer resolves it to the pass-through component.
var defaultRootRoute = &RouteConfig{
	Pattern:  DefaultRootPattern,
	Type:     RoutePage,
	compiled: CompilePattern(DefaultRootPattern),
}

// Core orchestrates matching, module loading, hierarchy construction and
// component-context assembly for the renderers. The manifest reference is
// swapped atomically on rebuild; renderers take one Snapshot per request
// and use it throughout, so a render pass never observes a half-updated
// route tree.
type Core struct {
	manifest atomic.Pointer[Manifest]

	fileLoader component.FileLoader
	provider   component.ContextProvider
	events     *EventBus
	logger     *slog.Logger
}

// CoreConfig configures a Core.
type CoreConfig struct {
	// Manifest is the initial route manifest. Required.
	Manifest *Manifest

	// FileLoader loads companion content files during context assembly.
	// Optional.
	FileLoader component.FileLoader

	// ContextProvider extends every component context before use.
	// Optional.
	ContextProvider component.ContextProvider

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewCore creates a route core over the given manifest.
func NewCore(cfg CoreConfig) *Core {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Core{
		fileLoader: cfg.FileLoader,
		provider:   cfg.ContextProvider,
		events:     NewEventBus(),
		logger:     logger,
	}
	c.manifest.Store(cfg.Manifest)
	return c
}

// Snapshot returns the current manifest. Callers performing a multi-step
// render hold one snapshot for the whole pass.
func (c *Core) Snapshot() *Manifest {
	return c.manifest.Load()
}

// Swap atomically replaces the manifest. In-flight renders keep their
// snapshot; new renders see the replacement.
func (c *Core) Swap(m *Manifest) {
	c.manifest.Store(m)
	c.events.Emit(Event{Type: EventManifestSwap})
}

// Events returns the core's event bus.
func (c *Core) Events() *EventBus { return c.events }

// Logger returns the core's logger.
func (c *Core) Logger() *slog.Logger { return c.logger }

// Match parses a URL (path plus optional query) and matches its path
// against the current manifest.
func (c *Core) Match(rawURL string) *MatchedRoute {
	return c.MatchIn(c.Snapshot(), rawURL)
}

// MatchIn is Match against an explicit manifest snapshot.
func (c *Core) MatchIn(m *Manifest, rawURL string) *MatchedRoute {
	u, err := url.Parse(rawURL)
	if err != nil {
		c.logger.Debug("router: unparseable url", "url", rawURL, "error", err)
		return nil
	}
	matched := m.Match(u.Path)
	if matched == nil {
		return nil
	}
	if q := u.Query(); len(q) > 0 {
		matched.SearchParams = q
	}
	return matched
}

// BuildHierarchy decomposes a leaf pattern into its path-segment prefixes
// and resolves each prefix to a registered route, root first. Unregistered
// prefixes are skipped rather than synthesized, except the root "/", which
// falls back to the synthetic bare-slot root when no explicit root route
// exists.
//
// A route that resolves as both an ancestor prefix and the leaf (a
// catch-all matching at two positions of its own walk) is kept only at the
// leaf position, so it renders exactly once.
func (c *Core) BuildHierarchy(m *Manifest, leafPattern string) []*RouteConfig {
	leaf := m.FindRoute(leafPattern)

	var chain []*RouteConfig
	prefixes := patternPrefixes(leafPattern)
	for i, prefix := range prefixes {
		isLast := i == len(prefixes)-1

		rc := m.FindRoute(prefix)
		if rc == nil {
			// Unregistered prefixes are skipped, not synthesized. The
			// root is the one exception: without an explicit "/" route
			// the synthetic bare-slot root anchors the chain.
			if prefix == DefaultRootPattern && !isLast {
				chain = append(chain, defaultRootRoute)
			}
			continue
		}
		if !isLast && leaf != nil && rc == leaf {
			// Ancestor occurrence of the leaf route itself.
			continue
		}
		chain = append(chain, rc)
	}
	return chain
}

// RouteInfo addresses one rendered route level: the concrete request path
// plus the pattern and parameters in play at that level.
type RouteInfo struct {
	Pathname     string
	Pattern      string
	Params       component.Params
	SearchParams url.Values
	IsLeaf       bool
	BasePath     string
}

// BuildContext assembles the per-level component context: base route
// addressing, pre-loaded companion files when a file loader is configured,
// then the optional context-provider extension. A fresh context is built
// per level per request.
func (c *Core) BuildContext(ctx context.Context, info RouteInfo, route *RouteConfig) (component.Context, error) {
	cc := component.Context{
		Pathname:     info.Pathname,
		Pattern:      info.Pattern,
		Params:       info.Params,
		SearchParams: info.SearchParams,
		IsLeaf:       info.IsLeaf,
		BasePath:     info.BasePath,
	}
	if cc.Params == nil {
		cc.Params = make(component.Params)
	}

	if c.fileLoader != nil && route != nil && !route.Files.Empty() {
		content, err := c.fileLoader(ctx, route.Pattern, route.Files)
		if err != nil {
			return cc, err
		}
		cc.Files = content
	}

	if c.provider != nil {
		cc = c.provider(cc)
	}
	return cc, nil
}
