package widget

import (
	"context"
	"sync"

	"github.com/velo-dev/velo/pkg/component"
)

// TagPrefix is the custom-element prefix shared by all widget tags.
const TagPrefix = "widget-"

// ManifestEntry registers one widget: its name, module association and
// optional companion files. TagName defaults to "widget-"+Name.
type ManifestEntry struct {
	Name       string
	ModulePath string
	TagName    string
	Files      component.FileRefs
}

// Registry holds the registered widgets, looked up by tag name during
// resolution. Lookups of unknown tags fail silently; the unmatched markup
// is left untouched.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*ManifestEntry
	byTag  map[string]*ManifestEntry
}

// NewRegistry creates a registry from the given entries.
func NewRegistry(entries ...ManifestEntry) *Registry {
	r := &Registry{
		byName: make(map[string]*ManifestEntry, len(entries)),
		byTag:  make(map[string]*ManifestEntry, len(entries)),
	}
	for i := range entries {
		r.Register(entries[i])
	}
	return r
}

// Register adds or replaces a widget entry.
func (r *Registry) Register(entry ManifestEntry) {
	if entry.TagName == "" {
		entry.TagName = TagPrefix + entry.Name
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[entry.Name] = &entry
	r.byTag[entry.TagName] = &entry
}

// Get returns the entry registered under name, if any.
func (r *Registry) Get(name string) (*ManifestEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

// GetByTag returns the entry registered under a full tag name, if any.
func (r *Registry) GetByTag(tag string) (*ManifestEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byTag[tag]
	return e, ok
}

// ModuleLoadFunc resolves a widget's module path to its loaded module.
// Wire this to the route core's load-once cache so widget modules share
// the same at-most-one-evaluation guarantee as route modules.
type ModuleLoadFunc func(ctx context.Context, modulePath string) (*component.Module, error)
