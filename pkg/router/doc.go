// Package router implements route matching and orchestration for Velo.
//
// The router provides:
//   - Pattern compilation with static, dynamic (:id) and trailing
//     wildcard (:rest*) segments
//   - Specificity-ordered matching (static > dynamic > wildcard,
//     compared segment-by-segment left to right)
//   - An immutable, atomically swappable route manifest with status
//     pages and prefix-scoped error boundaries
//   - A load-once module cache with single-flight coalescing
//   - Root-to-leaf hierarchy construction for nested layouts
//   - Per-request component-context assembly
//
// # Patterns
//
// Route patterns use segment syntax:
//
//	/blog          static
//	/blog/:id      dynamic segment, captured as params["id"]
//	/docs/:rest*   trailing catch-all, remaining path joined by "/"
//
// Given /users/:id and /users/me both registered, /users/me prefers the
// static route.
//
// # Usage
//
//	m := router.NewManifest(router.ManifestConfig{
//	    Routes: []*router.RouteConfig{
//	        {Pattern: "/", ModulePath: "routes/root"},
//	        {Pattern: "/blog/:id", ModulePath: "routes/blog-post"},
//	    },
//	    Loaders: loaders,
//	})
//
//	core := router.NewCore(router.CoreConfig{Manifest: m})
//	matched := core.Match("/blog/42?draft=1")
package router
