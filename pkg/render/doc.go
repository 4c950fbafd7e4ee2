// Package render implements the two server-side rendering pipelines.
//
// Both pipelines share one state machine:
//
//	Matching → {NotFound, Redirect, Rendering}
//	Rendering → Success(200) | ErrorRecovery → {StatusPage, InlineFallback}
//
// A request path is matched, the matched route's ancestor chain is built
// root to leaf, and each level renders into the first unconsumed slot of
// the accumulated result. The HTML pipeline then expands <mark-down>
// wrappers through an injected MarkdownRenderer and resolves widget tags;
// the Markdown pipeline produces a Markdown document with a fenced
// router-slot placeholder and shares the same widget resolver.
//
// Failures never escape Render: a miss resolves through the 404 status
// page, a typed StatusError through its matching status page, and any
// other error through the nearest error boundary, the root error handler,
// or a minimal inline page with the escaped error message, in that order.
package render
