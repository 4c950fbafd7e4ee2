package router

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/velo-dev/velo/pkg/component"
)

// RouteType classifies a route entry.
type RouteType string

const (
	// RoutePage is a normal renderable route.
	RoutePage RouteType = "page"

	// RouteError marks a status/error page route.
	RouteError RouteType = "error"

	// RouteRedirect short-circuits rendering with a redirect module.
	RouteRedirect RouteType = "redirect"
)

// RouteConfig describes one route: its pattern, type, module association,
// companion content files, and optional parent/status-code links. Configs
// are produced by a manifest build step and read-only afterwards.
type RouteConfig struct {
	Pattern    string             `yaml:"pattern"`
	Type       RouteType          `yaml:"type"`
	ModulePath string             `yaml:"module,omitempty"`
	Files      component.FileRefs `yaml:"files,omitempty"`
	Parent     string             `yaml:"parent,omitempty"`
	StatusCode int                `yaml:"status,omitempty"`

	compiled *Pattern
}

// ErrorBoundary scopes a custom error renderer to all routes under its
// pattern prefix. The longest matching prefix wins when several apply.
type ErrorBoundary struct {
	Pattern    string `yaml:"pattern"`
	ModulePath string `yaml:"module"`
}

// ManifestConfig is the input to NewManifest: the full declarative route
// set plus the module loaders that resolve module paths.
type ManifestConfig struct {
	Routes          []*RouteConfig
	ErrorBoundaries []ErrorBoundary
	StatusPages     map[int]*RouteConfig
	ErrorHandler    *RouteConfig
	Loaders         map[string]component.ModuleLoader
}

// Manifest is the compiled, immutable route tree consumed by the matcher
// and the renderers. It is built once per build/dev cycle and swapped
// atomically on rebuild; an in-flight render always works against a single
// snapshot.
type Manifest struct {
	routes      []*RouteConfig // sorted most-specific first
	byPattern   map[string]*RouteConfig
	boundaries  []ErrorBoundary // sorted longest prefix first
	statusPages map[int]*RouteConfig
	errHandler  *RouteConfig
	modules     *moduleCache
}

// MatchedRoute is the result of matching one concrete URL.
type MatchedRoute struct {
	Route        *RouteConfig
	Params       component.Params
	SearchParams url.Values
}

// NewManifest compiles a manifest config into an immutable Manifest.
// Route patterns are compiled and ordered by specificity once, here, so
// per-request matching is a linear scan over a pre-sorted candidate list.
func NewManifest(cfg ManifestConfig) *Manifest {
	m := &Manifest{
		byPattern:   make(map[string]*RouteConfig, len(cfg.Routes)),
		statusPages: cfg.StatusPages,
		errHandler:  cfg.ErrorHandler,
		modules:     newModuleCache(cfg.Loaders),
	}
	if m.statusPages == nil {
		m.statusPages = make(map[int]*RouteConfig)
	}

	for _, rc := range cfg.Routes {
		if rc.Type == "" {
			rc.Type = RoutePage
		}
		rc.compiled = CompilePattern(rc.Pattern)
		m.routes = append(m.routes, rc)
		m.byPattern[rc.Pattern] = rc
	}
	for _, sp := range m.statusPages {
		if sp.compiled == nil {
			sp.compiled = CompilePattern(sp.Pattern)
		}
		if sp.Type == "" {
			sp.Type = RouteError
		}
	}
	if m.errHandler != nil && m.errHandler.compiled == nil {
		m.errHandler.compiled = CompilePattern(m.errHandler.Pattern)
	}

	sort.SliceStable(m.routes, func(i, j int) bool {
		return m.routes[i].compiled.moreSpecific(m.routes[j].compiled)
	})

	m.boundaries = append(m.boundaries, cfg.ErrorBoundaries...)
	sort.SliceStable(m.boundaries, func(i, j int) bool {
		return len(m.boundaries[i].Pattern) > len(m.boundaries[j].Pattern)
	})

	return m
}

// Match matches a concrete path against the registered routes in
// specificity order. The first fully matching candidate wins. A miss
// returns nil, never an error; the caller treats nil as a 404 candidate.
func (m *Manifest) Match(path string) *MatchedRoute {
	for _, rc := range m.routes {
		if rc.Type == RouteError {
			continue
		}
		if params, ok := rc.compiled.Match(path); ok {
			return &MatchedRoute{Route: rc, Params: params}
		}
	}
	return nil
}

// FindRoute returns the route registered under the exact pattern, if any.
func (m *Manifest) FindRoute(pattern string) *RouteConfig {
	return m.byPattern[pattern]
}

// StatusPage returns the route registered for an HTTP status code, if any.
func (m *Manifest) StatusPage(code int) *RouteConfig {
	return m.statusPages[code]
}

// ErrorHandler returns the root error handler route, if configured.
func (m *Manifest) ErrorHandler() *RouteConfig {
	return m.errHandler
}

// FindErrorBoundary returns the error boundary whose prefix matches the
// given path, preferring the longest prefix. Returns nil when no boundary
// applies.
func (m *Manifest) FindErrorBoundary(path string) *ErrorBoundary {
	for i := range m.boundaries {
		b := &m.boundaries[i]
		if prefixMatches(b.Pattern, path) {
			return b
		}
	}
	return nil
}

// prefixMatches reports whether path falls under the boundary prefix,
// respecting segment boundaries: "/blog" covers "/blog" and "/blog/42"
// but not "/blogroll".
func prefixMatches(prefix, path string) bool {
	if prefix == "/" || prefix == "" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}

// manifestFile is the on-disk manifest shape.
type manifestFile struct {
	Routes          []*RouteConfig        `yaml:"routes"`
	ErrorBoundaries []ErrorBoundary       `yaml:"errorBoundaries,omitempty"`
	StatusPages     map[int]*RouteConfig  `yaml:"statusPages,omitempty"`
	ErrorHandler    *RouteConfig          `yaml:"errorHandler,omitempty"`
}

// LoadManifestFile reads a YAML route manifest produced by an external
// generator. Module loaders cannot be expressed in the file; callers merge
// them in before compiling.
func LoadManifestFile(path string, loaders map[string]component.ModuleLoader) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("router: read manifest: %w", err)
	}

	var file manifestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("router: parse manifest %s: %w", path, err)
	}

	return NewManifest(ManifestConfig{
		Routes:          file.Routes,
		ErrorBoundaries: file.ErrorBoundaries,
		StatusPages:     file.StatusPages,
		ErrorHandler:    file.ErrorHandler,
		Loaders:         loaders,
	}), nil
}
