package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/velo-dev/velo/pkg/component"
)

// ErrModuleNotFound is returned when no loader is registered for a module
// path.
var ErrModuleNotFound = errors.New("router: module not found")

// moduleCache guarantees at-most-one evaluation per module path for the
// life of a manifest instance. Concurrent first-time loads of the same
// path coalesce onto a single in-flight call: the second caller waits for
// the first caller's result instead of re-evaluating the loader.
type moduleCache struct {
	loaders map[string]component.ModuleLoader

	mu       sync.Mutex
	loaded   map[string]*component.Module
	inflight map[string]*moduleCall
}

// moduleCall tracks one in-flight load.
type moduleCall struct {
	done chan struct{}
	mod  *component.Module
	err  error
}

func newModuleCache(loaders map[string]component.ModuleLoader) *moduleCache {
	return &moduleCache{
		loaders:  loaders,
		loaded:   make(map[string]*component.Module),
		inflight: make(map[string]*moduleCall),
	}
}

// load returns the module for path, evaluating its loader at most once.
// A failed load is not cached: the next caller retries the loader. The
// ctx passed by a waiting caller only bounds its wait, not the load
// itself, which belongs to the first caller.
func (c *moduleCache) load(ctx context.Context, path string) (*component.Module, error) {
	c.mu.Lock()
	if mod, ok := c.loaded[path]; ok {
		c.mu.Unlock()
		return mod, nil
	}
	if call, ok := c.inflight[path]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.mod, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	loader, ok := c.loaders[path]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, path)
	}

	call := &moduleCall{done: make(chan struct{})}
	c.inflight[path] = call
	c.mu.Unlock()

	call.mod, call.err = loader(ctx)

	c.mu.Lock()
	delete(c.inflight, path)
	if call.err == nil {
		c.loaded[path] = call.mod
	}
	c.mu.Unlock()

	close(call.done)
	return call.mod, call.err
}

// LoadModule resolves a module path through the manifest's load-once
// cache.
func (m *Manifest) LoadModule(ctx context.Context, path string) (*component.Module, error) {
	return m.modules.load(ctx, path)
}
