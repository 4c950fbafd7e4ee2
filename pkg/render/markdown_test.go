package render

import (
	"context"
	"strings"
	"testing"

	"github.com/velo-dev/velo/pkg/component"
	"github.com/velo-dev/velo/pkg/router"
)

func mdComponent(out string) *component.Component {
	return &component.Component{
		RenderMarkdown: func(_, _ any, _ component.Context) (string, error) {
			return out, nil
		},
	}
}

func TestMarkdownRenderComposesHierarchy(t *testing.T) {
	core := testCore(t, router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/", ModulePath: "routes/root"},
			{Pattern: "/blog/:id", ModulePath: "routes/blog"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/root": loaderFor(&component.Module{Component: mdComponent(
				"# Site\n\n" + component.SlotMarkdown + "\n",
			)}),
			"routes/blog": loaderFor(&component.Module{Component: &component.Component{
				RenderMarkdown: func(_, params any, _ component.Context) (string, error) {
					p := params.(component.Params)
					return "Post " + p["id"], nil
				},
			}}),
		},
	})
	r := NewMarkdown(MarkdownConfig{Core: core, PathPrefix: "/"})

	res := r.Render(context.Background(), "/blog/42")
	if res.Status != 200 {
		t.Fatalf("Status = %d, want 200", res.Status)
	}
	if res.Content != "# Site\n\nPost 42\n" {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestMarkdownRenderDefaultPrefix(t *testing.T) {
	core := testCore(t, router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/about", ModulePath: "routes/about"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/about": loaderFor(&component.Module{Component: mdComponent("About us")}),
		},
	})
	r := NewMarkdown(MarkdownConfig{Core: core}) // default prefix /md

	res := r.Render(context.Background(), "/md/about")
	if res.Status != 200 || res.Content != "About us" {
		t.Errorf("Render(/md/about) = %+v", res)
	}
}

func TestMarkdownRenderNotFoundInline(t *testing.T) {
	core := testCore(t, router.ManifestConfig{})
	r := NewMarkdown(MarkdownConfig{Core: core, PathPrefix: "/"})

	res := r.Render(context.Background(), "/nope")
	if res.Status != 404 {
		t.Fatalf("Status = %d, want 404", res.Status)
	}
	if !strings.HasPrefix(res.Content, "# 404 Not Found") {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestMarkdownRenderRedirectBody(t *testing.T) {
	core := testCore(t, router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/old", Type: router.RouteRedirect, ModulePath: "routes/old"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/old": loaderFor(&component.Module{
				Redirect: &component.Redirect{To: "/new"},
			}),
		},
	})
	r := NewMarkdown(MarkdownConfig{Core: core, PathPrefix: "/"})

	res := r.Render(context.Background(), "/old")
	if res.Status != 301 || res.Redirect != "/new" {
		t.Fatalf("Render(/old) = %+v", res)
	}
	if res.Content != "Redirecting to /new\n" {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestMarkdownRenderComponentWithoutMarkdownPassesThrough(t *testing.T) {
	// An HTML-only layout contributes a bare slot to the Markdown
	// pipeline, so its children still render.
	core := testCore(t, router.ManifestConfig{
		Routes: []*router.RouteConfig{
			{Pattern: "/", ModulePath: "routes/root"},
			{Pattern: "/docs", ModulePath: "routes/docs"},
		},
		Loaders: map[string]component.ModuleLoader{
			"routes/root": loaderFor(&component.Module{Component: htmlComponent("<nav/>")}),
			"routes/docs": loaderFor(&component.Module{Component: mdComponent("# Docs")}),
		},
	})
	r := NewMarkdown(MarkdownConfig{Core: core, PathPrefix: "/"})

	res := r.Render(context.Background(), "/docs")
	if res.Content != "# Docs" {
		t.Errorf("Content = %q", res.Content)
	}
}
