package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"

	"github.com/velo-dev/velo/pkg/component"
)

// DefaultMaxDepth bounds widget-in-widget recursion. Output produced at
// the limit keeps any remaining widget tags as literal markup.
const DefaultMaxDepth = 3

// Resolver discovers widget tags in rendered markup, runs each widget's
// data/render lifecycle, injects hydration data, and recurses into widget
// output up to a fixed depth.
type Resolver struct {
	registry   *Registry
	load       ModuleLoadFunc
	fileLoader component.FileLoader
	provider   component.ContextProvider
	maxDepth   int
	logger     *slog.Logger
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Registry is the widget registry. Required.
	Registry *Registry

	// Load resolves widget module paths. Required.
	Load ModuleLoadFunc

	// FileLoader loads widget companion files. Optional.
	FileLoader component.FileLoader

	// ContextProvider extends each widget's context. Optional.
	ContextProvider component.ContextProvider

	// MaxDepth bounds recursion into widget output.
	// Defaults to DefaultMaxDepth.
	MaxDepth int

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewResolver creates a widget resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		registry:   cfg.Registry,
		load:       cfg.Load,
		fileLoader: cfg.FileLoader,
		provider:   cfg.ContextProvider,
		maxDepth:   cfg.MaxDepth,
		logger:     cfg.Logger,
	}
}

// Resolve rewrites every resolvable widget tag in markup. base is the
// ambient context of the page level that produced the markup; widgets
// embedded in a shared layout still see the actually requested leaf route
// through it.
//
// Failures are isolated per tag: a widget whose data fetch or render
// fails is left exactly as it matched, and its siblings are unaffected.
// Unregistered tag names are untouched.
func (r *Resolver) Resolve(ctx context.Context, markup string, base component.Context) string {
	return r.resolve(ctx, markup, base, 0, r.load)
}

// ResolveWith is Resolve with the module loads routed through load
// instead of the configured loader. Render passes use it to keep widget
// modules on the same manifest snapshot as the route walk that produced
// the markup. A nil load falls back to the configured loader.
func (r *Resolver) ResolveWith(ctx context.Context, markup string, base component.Context, load ModuleLoadFunc) string {
	if load == nil {
		load = r.load
	}
	return r.resolve(ctx, markup, base, 0, load)
}

// tagResult is the outcome of resolving one tag.
type tagResult struct {
	rewritten string
	ok        bool
}

func (r *Resolver) resolve(ctx context.Context, markup string, base component.Context, depth int, load ModuleLoadFunc) string {
	if depth >= r.maxDepth {
		return markup
	}

	tags := scanTags(markup)
	if len(tags) == 0 {
		return markup
	}

	// All tags of one pass resolve concurrently; each failure stays
	// local to its tag.
	results := make([]tagResult, len(tags))
	var wg sync.WaitGroup
	for i := range tags {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := r.resolveTag(ctx, tags[i], base, depth, load)
			if err != nil {
				r.logger.Debug("widget: tag left unresolved",
					"tag", tags[i].tagName, "error", err)
				return
			}
			results[i] = tagResult{rewritten: out, ok: true}
		}(i)
	}
	wg.Wait()

	// Splice from the last match to the first so earlier replacements
	// never shift later matches' offsets.
	out := markup
	for i := len(tags) - 1; i >= 0; i-- {
		if !results[i].ok {
			continue
		}
		out = out[:tags[i].start] + results[i].rewritten + out[tags[i].end:]
	}
	return out
}

// resolveTag runs one widget's lifecycle and builds its rewritten markup.
func (r *Resolver) resolveTag(ctx context.Context, tag tagMatch, base component.Context, depth int, load ModuleLoadFunc) (string, error) {
	entry, ok := r.registry.GetByTag(tag.tagName)
	if !ok {
		return "", fmt.Errorf("widget: %s not registered", tag.tagName)
	}

	params := parseAttrs(tag.rawAttrs)

	cc := base
	if r.fileLoader != nil && !entry.Files.Empty() {
		content, err := r.fileLoader(ctx, entry.Name, entry.Files)
		if err != nil {
			return "", fmt.Errorf("widget %s: load files: %w", entry.Name, err)
		}
		cc.Files = content
	}
	if r.provider != nil {
		cc = r.provider(cc)
	}

	mod, err := load(ctx, entry.ModulePath)
	if err != nil {
		return "", fmt.Errorf("widget %s: %w", entry.Name, err)
	}
	comp := mod.Component
	if comp == nil || comp.RenderHTML == nil {
		return "", fmt.Errorf("widget %s: module has no renderable component", entry.Name)
	}

	if comp.ValidateParams != nil {
		if err := comp.ValidateParams(params); err != nil {
			return "", fmt.Errorf("widget %s: %w", entry.Name, err)
		}
	}

	var data any
	if comp.GetData != nil {
		data, err = comp.GetData(ctx, params, cc)
		if err != nil {
			return "", fmt.Errorf("widget %s: get data: %w", entry.Name, err)
		}
	}

	inner, err := comp.RenderHTML(data, params, cc)
	if err != nil {
		return "", fmt.Errorf("widget %s: render: %w", entry.Name, err)
	}

	// Widget output may embed further widgets.
	inner = r.resolve(ctx, inner, base, depth+1, load)

	return rebuildTag(tag, inner, data)
}

// rebuildTag reassembles the tag with its original attributes verbatim
// plus the serialized hydration-data attribute, wrapping the freshly
// rendered inner content.
func rebuildTag(tag tagMatch, inner string, data any) (string, error) {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag.tagName)

	if attrs := stripReservedAttr(tag.rawAttrs); attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}

	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("widget: serialize hydration data: %w", err)
		}
		b.WriteByte(' ')
		b.WriteString(SSRDataAttr)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(string(encoded)))
		b.WriteString(`"`)
	}

	b.WriteByte('>')
	b.WriteString(inner)
	b.WriteString("</")
	b.WriteString(tag.tagName)
	b.WriteByte('>')
	return b.String(), nil
}
