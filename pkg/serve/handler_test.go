package serve

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/velo-dev/velo/pkg/render"
)

// echoRenderer answers every render with a tagged body so tests can tell
// which pipeline handled a request and with what URL.
type echoRenderer struct {
	tag    string
	result render.Result
}

func (e *echoRenderer) Render(ctx context.Context, rawURL string) render.Result {
	if e.result != (render.Result{}) {
		return e.result
	}
	return render.Result{Content: e.tag + ":" + rawURL, Status: 200}
}

func get(t *testing.T, h http.Handler, path string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, string(body)
}

func TestServePrefixRouting(t *testing.T) {
	h := New(Config{
		HTML:     &echoRenderer{tag: "html"},
		Markdown: &echoRenderer{tag: "md"},
	})

	res, body := get(t, h, "/html/blog/42?x=1", nil)
	if res.StatusCode != 200 || body != "html:/html/blog/42?x=1" {
		t.Errorf("HTML prefix: status %d, body %q", res.StatusCode, body)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	res, body = get(t, h, "/md/blog/42", nil)
	if body != "md:/md/blog/42" {
		t.Errorf("Markdown prefix: body %q", body)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServeNegotiatesMarkdownByAccept(t *testing.T) {
	h := New(Config{
		HTML:     &echoRenderer{tag: "html"},
		Markdown: &echoRenderer{tag: "md"},
	})

	_, body := get(t, h, "/about", map[string]string{"Accept": "text/markdown"})
	if body != "md:/about" {
		t.Errorf("markdown negotiation: body %q", body)
	}

	_, body = get(t, h, "/about", map[string]string{"Accept": "text/html,*/*"})
	if body != "html:/about" {
		t.Errorf("html default: body %q", body)
	}
}

func TestServeWithoutMarkdownPipeline(t *testing.T) {
	h := New(Config{HTML: &echoRenderer{tag: "html"}})

	_, body := get(t, h, "/about", map[string]string{"Accept": "text/markdown"})
	if body != "html:/about" {
		t.Errorf("negotiation without markdown pipeline: body %q", body)
	}
}

func TestServeRedirectSetsLocation(t *testing.T) {
	h := New(Config{
		HTML: &echoRenderer{result: render.Result{
			Content:  "<!DOCTYPE html>",
			Status:   301,
			Redirect: "/new",
		}},
	})

	res, _ := get(t, h, "/html/old", nil)
	if res.StatusCode != 301 {
		t.Errorf("status = %d, want 301", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/new" {
		t.Errorf("Location = %q, want /new", loc)
	}
}

func TestServeStatusPassedThrough(t *testing.T) {
	h := New(Config{
		HTML: &echoRenderer{result: render.Result{Content: "<h1>404 Not Found</h1>", Status: 404}},
	})

	res, body := get(t, h, "/html/missing", nil)
	if res.StatusCode != 404 || !strings.Contains(body, "404") {
		t.Errorf("status %d, body %q", res.StatusCode, body)
	}
}

func TestServeMetricsEndpoint(t *testing.T) {
	h := New(Config{HTML: &echoRenderer{tag: "html"}, EnableMetrics: true})

	res, _ := get(t, h, "/metrics", nil)
	if res.StatusCode != 200 {
		t.Errorf("metrics endpoint status = %d", res.StatusCode)
	}
}
