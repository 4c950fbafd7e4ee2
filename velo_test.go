package velo

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/router"
	"github.com/velo-dev/velo/pkg/widget"
)

func testManifest() *router.Manifest {
	return router.NewManifest(router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/", ModulePath: "routes/root"},
			{Pattern: "/blog/:id", ModulePath: "routes/blog"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/root": func(ctx context.Context) (*component.Module, error) {
				return &component.Module{Component: &component.Component{
					RenderHTML: func(_, _ any, _ component.Context) (string, error) {
						return "<nav/>" + component.SlotHTML, nil
					},
					RenderMarkdown: func(_, _ any, _ component.Context) (string, error) {
						return "# Site\n\n" + component.SlotMarkdown, nil
					},
				}}, nil
			},
			"routes/blog": func(ctx context.Context) (*component.Module, error) {
				return &component.Module{Component: &component.Component{
					RenderHTML: func(_, params any, _ component.Context) (string, error) {
						p := params.(component.Params)
						return "<article>Post " + p["id"] + "</article>" +
							`<widget-badge></widget-badge>`, nil
					},
					RenderMarkdown: func(_, params any, _ component.Context) (string, error) {
						p := params.(component.Params)
						return "Post " + p["id"], nil
					},
				}}, nil
			},
			"widgets/badge": func(ctx context.Context) (*component.Module, error) {
				return &component.Module{Component: &component.Component{
					RenderHTML: func(_, _ any, _ component.Context) (string, error) {
						return "new", nil
					},
				}}, nil
			},
		},
	})
}

func testApp(t *testing.T) *App {
	t.Helper()
	return New(Config{
		Manifest: testManifest(),
		Widgets: []widget.ManifestEntry{
			{Name: "badge", ModulePath: "widgets/badge"},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestAppServesBothPipelines(t *testing.T) {
	app := testApp(t)

	res := app.HTML().Render(context.Background(), "/html/blog/42")
	if res.Status != 200 {
		t.Fatalf("HTML status = %d, want 200", res.Status)
	}
	if !strings.Contains(res.Content, "<nav/><article>Post 42</article>") {
		t.Errorf("HTML content = %q", res.Content)
	}
	// Route modules and widget modules resolve through the same loader
	// set, so the widget embedded in the page renders too.
	if !strings.Contains(res.Content, "<widget-badge>new</widget-badge>") {
		t.Errorf("widget not resolved: %q", res.Content)
	}

	md := app.Markdown().Render(context.Background(), "/md/blog/42")
	if md.Status != 200 || !strings.Contains(md.Content, "Post 42") {
		t.Errorf("Markdown render = %+v", md)
	}
}

func TestAppSwapManifest(t *testing.T) {
	app := testApp(t)

	var swaps int
	remove := app.Subscribe(func(ev router.Event) {
		if ev.Type == router.EventManifestSwap {
			swaps++
		}
	})
	defer remove()

	replacement := router.NewManifest(router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/hello", ModulePath: "routes/hello"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/hello": func(ctx context.Context) (*component.Module, error) {
				return &component.Module{Component: &component.Component{
					RenderHTML: func(_, _ any, _ component.Context) (string, error) {
						return "hello", nil
					},
				}}, nil
			},
		},
	})
	app.SwapManifest(replacement)

	if swaps != 1 {
		t.Errorf("swap events = %d, want 1", swaps)
	}

	res := app.HTML().Render(context.Background(), "/html/hello")
	if res.Status != 200 || res.Content != "hello" {
		t.Errorf("post-swap render = %+v", res)
	}
	if res := app.HTML().Render(context.Background(), "/html/blog/42"); res.Status != 404 {
		t.Errorf("old route still matches after swap: %+v", res)
	}
}

func TestAppWidgetLoadsUseRenderSnapshot(t *testing.T) {
	// A manifest swap landing while a page renders must not affect that
	// render's widget resolution: the whole pass stays on the snapshot
	// it started with.
	var app *App
	replacement := router.NewManifest(router.ManifestConfig{})

	manifest := router.NewManifest(router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/", ModulePath: "routes/root"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/root": func(ctx context.Context) (*component.Module, error) {
				return &component.Module{Component: &component.Component{
					RenderHTML: func(_, _ any, _ component.Context) (string, error) {
						app.SwapManifest(replacement)
						return `<widget-badge></widget-badge>`, nil
					},
				}}, nil
			},
			"widgets/badge": func(ctx context.Context) (*component.Module, error) {
				return &component.Module{Component: &component.Component{
					RenderHTML: func(_, _ any, _ component.Context) (string, error) {
						return "ok", nil
					},
				}}, nil
			},
		},
	})

	app = New(Config{
		Manifest: manifest,
		Widgets: []widget.ManifestEntry{
			{Name: "badge", ModulePath: "widgets/badge"},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	res := app.HTML().Render(context.Background(), "/html")
	if !strings.Contains(res.Content, "<widget-badge>ok</widget-badge>") {
		t.Errorf("widget did not resolve against the starting snapshot: %q", res.Content)
	}
}

func TestAppEmitsRenderEvents(t *testing.T) {
	app := testApp(t)

	var events []router.Event
	remove := app.Subscribe(func(ev router.Event) {
		if ev.Type == router.EventRender {
			events = append(events, ev)
		}
	})
	defer remove()

	app.HTML().Render(context.Background(), "/html/blog/1")
	app.HTML().Render(context.Background(), "/html/nope")

	if len(events) != 2 {
		t.Fatalf("render events = %d, want 2", len(events))
	}
	if events[0].Pattern != "/blog/:id" || events[0].Status != 200 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Status != 404 {
		t.Errorf("second event = %+v", events[1])
	}
}
