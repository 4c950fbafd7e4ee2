package router

import (
	"context"
	"reflect"
	"testing"

	"github.com/velo-dev/velo/pkg/component"
)

func chainPatterns(chain []*RouteConfig) []string {
	patterns := make([]string, len(chain))
	for i, rc := range chain {
		patterns[i] = rc.Pattern
	}
	return patterns
}

func TestCoreMatchParsesQuery(t *testing.T) {
	core := NewCore(CoreConfig{Manifest: testManifest(
		&RouteConfig{Pattern: "/blog/:id"},
	)})

	matched := core.Match("/blog/42?draft=1")
	if matched == nil {
		t.Fatal("Match = nil")
	}
	if matched.Params["id"] != "42" {
		t.Errorf("params[id] = %q, want %q", matched.Params["id"], "42")
	}
	if got := matched.SearchParams.Get("draft"); got != "1" {
		t.Errorf("searchParams[draft] = %q, want %q", got, "1")
	}
}

func TestCoreBuildHierarchy(t *testing.T) {
	m := testManifest(
		&RouteConfig{Pattern: "/"},
		&RouteConfig{Pattern: "/blog"},
		&RouteConfig{Pattern: "/blog/:id"},
		&RouteConfig{Pattern: "/about/team/history"},
	)
	core := NewCore(CoreConfig{Manifest: m})

	tests := []struct {
		leaf string
		want []string
	}{
		{"/blog/:id", []string{"/", "/blog", "/blog/:id"}},
		{"/blog", []string{"/", "/blog"}},
		// Unregistered intermediate prefixes are skipped.
		{"/about/team/history", []string{"/", "/about/team/history"}},
		{"/", []string{"/"}},
	}

	for _, tt := range tests {
		got := chainPatterns(core.BuildHierarchy(m, tt.leaf))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("BuildHierarchy(%q) = %v, want %v", tt.leaf, got, tt.want)
		}
	}
}

func TestCoreBuildHierarchySyntheticRoot(t *testing.T) {
	m := testManifest(&RouteConfig{Pattern: "/blog/:id"})
	core := NewCore(CoreConfig{Manifest: m})

	chain := core.BuildHierarchy(m, "/blog/:id")
	want := []string{"/", "/blog/:id"}
	if got := chainPatterns(chain); !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildHierarchy = %v, want %v", got, want)
	}
	if chain[0] == m.FindRoute("/blog/:id") {
		t.Error("synthetic root should not be the leaf route")
	}
	if chain[0].ModulePath != "" {
		t.Error("synthetic root should have no module")
	}
}

func TestCoreBuildContextProviderExtends(t *testing.T) {
	m := testManifest(&RouteConfig{Pattern: "/x"})
	core := NewCore(CoreConfig{
		Manifest: m,
		ContextProvider: func(base component.Context) component.Context {
			return base.WithValue("tenant", "acme")
		},
	})

	cc, err := core.BuildContext(context.Background(), RouteInfo{
		Pathname: "/x",
		Pattern:  "/x",
		IsLeaf:   true,
	}, m.FindRoute("/x"))
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}

	if cc.Pathname != "/x" || cc.Pattern != "/x" || !cc.IsLeaf {
		t.Errorf("base context not preserved: %+v", cc)
	}
	if got := cc.Value("tenant"); got != "acme" {
		t.Errorf("Value(tenant) = %v, want %q", got, "acme")
	}
}

func TestCoreBuildContextLoadsFiles(t *testing.T) {
	m := testManifest(&RouteConfig{
		Pattern: "/docs",
		Files:   component.FileRefs{MD: "docs.md"},
	})
	core := NewCore(CoreConfig{
		Manifest: m,
		FileLoader: func(ctx context.Context, name string, refs component.FileRefs) (*component.FileContent, error) {
			if refs.MD != "docs.md" {
				t.Errorf("refs.MD = %q, want %q", refs.MD, "docs.md")
			}
			return &component.FileContent{MD: "# Docs"}, nil
		},
	})

	cc, err := core.BuildContext(context.Background(), RouteInfo{Pattern: "/docs"}, m.FindRoute("/docs"))
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if cc.Files == nil || cc.Files.MD != "# Docs" {
		t.Errorf("Files = %+v, want MD loaded", cc.Files)
	}
}

func TestCoreSwapManifest(t *testing.T) {
	m1 := testManifest(&RouteConfig{Pattern: "/old"})
	m2 := testManifest(&RouteConfig{Pattern: "/new"})
	core := NewCore(CoreConfig{Manifest: m1})

	if core.Match("/old") == nil {
		t.Fatal("Match(/old) = nil before swap")
	}

	var swapped bool
	remove := core.Events().AddListener(func(ev Event) {
		if ev.Type == EventManifestSwap {
			swapped = true
		}
	})
	defer remove()

	core.Swap(m2)
	if core.Match("/old") != nil {
		t.Error("Match(/old) != nil after swap")
	}
	if core.Match("/new") == nil {
		t.Error("Match(/new) = nil after swap")
	}
	if !swapped {
		t.Error("manifest swap event not emitted")
	}
}
