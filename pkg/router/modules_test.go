package router

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/velo-dev/velo/pkg/component"
)

func TestModuleCacheLoadOnce(t *testing.T) {
	var evals atomic.Int32
	m := NewManifest(ManifestConfig{
		Loaders: map[string]component.ModuleLoader{
			"mod/a": func(ctx context.Context) (*component.Module, error) {
				evals.Add(1)
				return &component.Module{Component: &component.Component{}}, nil
			},
		},
	})

	for i := 0; i < 5; i++ {
		if _, err := m.LoadModule(context.Background(), "mod/a"); err != nil {
			t.Fatalf("LoadModule() error = %v", err)
		}
	}
	if got := evals.Load(); got != 1 {
		t.Errorf("loader evaluated %d times, want 1", got)
	}
}

func TestModuleCacheCoalescesConcurrentLoads(t *testing.T) {
	var evals atomic.Int32
	release := make(chan struct{})
	m := NewManifest(ManifestConfig{
		Loaders: map[string]component.ModuleLoader{
			"mod/slow": func(ctx context.Context) (*component.Module, error) {
				evals.Add(1)
				<-release
				return &component.Module{Component: &component.Component{}}, nil
			},
		},
	})

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.LoadModule(context.Background(), "mod/slow")
		}(i)
	}

	// Give every caller time to reach the cache before the load
	// completes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d error = %v", i, err)
		}
	}
	if got := evals.Load(); got != 1 {
		t.Errorf("loader evaluated %d times, want 1", got)
	}
}

func TestModuleCacheWaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	m := NewManifest(ManifestConfig{
		Loaders: map[string]component.ModuleLoader{
			"mod/hang": func(ctx context.Context) (*component.Module, error) {
				<-release
				return &component.Module{}, nil
			},
		},
	})

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = m.LoadModule(context.Background(), "mod/hang")
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.LoadModule(ctx, "mod/hang")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("LoadModule() error = %v, want deadline exceeded", err)
	}
}

func TestModuleCacheUnknownPath(t *testing.T) {
	m := NewManifest(ManifestConfig{})

	_, err := m.LoadModule(context.Background(), "mod/missing")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Errorf("LoadModule() error = %v, want ErrModuleNotFound", err)
	}
}

func TestModuleCacheFailedLoadRetries(t *testing.T) {
	var evals atomic.Int32
	m := NewManifest(ManifestConfig{
		Loaders: map[string]component.ModuleLoader{
			"mod/flaky": func(ctx context.Context) (*component.Module, error) {
				if evals.Add(1) == 1 {
					return nil, errors.New("boom")
				}
				return &component.Module{}, nil
			},
		},
	})

	if _, err := m.LoadModule(context.Background(), "mod/flaky"); err == nil {
		t.Fatal("first LoadModule() error = nil, want error")
	}
	if _, err := m.LoadModule(context.Background(), "mod/flaky"); err != nil {
		t.Fatalf("second LoadModule() error = %v", err)
	}
	if got := evals.Load(); got != 2 {
		t.Errorf("loader evaluated %d times, want 2", got)
	}
}
