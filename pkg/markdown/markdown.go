// Package markdown provides a MarkdownRenderer backed by goldmark with
// bluemonday sanitization. The render core consumes it through the
// render.MarkdownRenderer capability; nothing in the core depends on this
// package.
package markdown

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Config configures the renderer.
type Config struct {
	// Unsafe disables output sanitization. Only for trusted content.
	Unsafe bool

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// Renderer converts Markdown to sanitized HTML. It is safe for
// concurrent use after Init.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	logger *slog.Logger
}

// New creates a renderer. Init completes the goldmark and sanitizer
// setup; the render core calls it lazily before first use.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{logger: logger}
	if !cfg.Unsafe {
		r.policy = bluemonday.UGCPolicy()
	}
	return r
}

// Init builds the goldmark pipeline. Idempotent.
func (r *Renderer) Init(ctx context.Context) error {
	if r.md != nil {
		return nil
	}
	// Raw HTML passes through goldmark; bluemonday is the safety layer.
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)
	return nil
}

// Render converts markdown to HTML, sanitizing the result unless the
// renderer was configured Unsafe. Render never fails: on a conversion
// error the escaped source is returned inside a <pre> block.
func (r *Renderer) Render(markdown string) string {
	if r.md == nil {
		// Callers are expected to Init first; do it here so a direct
		// use still works.
		_ = r.Init(context.Background())
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		r.logger.Error("markdown: conversion failed", "error", err)
		safe := bluemonday.StrictPolicy().Sanitize(markdown)
		return "<pre>" + safe + "</pre>"
	}

	if r.policy != nil {
		return r.policy.Sanitize(buf.String())
	}
	return buf.String()
}
