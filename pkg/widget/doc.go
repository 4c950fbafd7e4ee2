// Package widget implements server-side resolution of embedded widget
// tags.
//
// A widget is a self-contained, named, data-fetching unit embedded in
// rendered content through a custom-element convention:
//
//	<widget-coin-price coin="bitcoin" price=42000></widget-coin-price>
//
// During SSR the resolver scans composed markup for balanced widget tags,
// parses their attributes into typed parameters (kebab-case names become
// camelCase keys, values are JSON-coerced with a raw-string fallback),
// runs each matched widget's GetData/RenderHTML lifecycle concurrently,
// injects the fetched data as a data-ssr-data attribute for client
// hydration, and recurses into widget output up to a fixed depth.
//
// Failure handling is deliberately quiet: unregistered tag names and
// per-widget errors leave the original markup byte-for-byte intact, and
// one widget's failure never affects a sibling.
package widget
