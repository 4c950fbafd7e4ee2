package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestRenderBasic(t *testing.T) {
	r := New(Config{})
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	out := r.Render("# Hello\n\nsome *text*")
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Errorf("heading missing: %q", out)
	}
	if !strings.Contains(out, "<em>text</em>") {
		t.Errorf("emphasis missing: %q", out)
	}
}

func TestRenderGFMTable(t *testing.T) {
	r := New(Config{})

	out := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if !strings.Contains(out, "<table>") {
		t.Errorf("table extension inactive: %q", out)
	}
}

func TestRenderSanitizesScripts(t *testing.T) {
	r := New(Config{})

	out := r.Render("hi\n\n<script>alert(1)</script>")
	if strings.Contains(out, "<script>") {
		t.Errorf("script survived sanitization: %q", out)
	}
}

func TestRenderUnsafeSkipsSanitization(t *testing.T) {
	r := New(Config{Unsafe: true})

	out := r.Render("<div class=\"x\">raw</div>")
	if !strings.Contains(out, `<div class="x">`) {
		t.Errorf("unsafe renderer stripped markup: %q", out)
	}
}

func TestInitIdempotent(t *testing.T) {
	r := New(Config{})
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	first := r.md
	if err := r.Init(context.Background()); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if r.md != first {
		t.Error("Init rebuilt the pipeline")
	}
}
