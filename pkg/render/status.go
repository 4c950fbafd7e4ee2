package render

import (
	"fmt"
	"net/http"
	"strings"
)

// Escapers for the built-in fallback pages. textEscaper covers element
// content; attrEscaper additionally covers the whitespace that would
// break out of the meta-refresh url attribute.
var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

// StatusError is the typed signal a component raises to request a
// non-200 outcome (e.g. 401, 404). The renderer resolves it through the
// matching status page instead of the error-boundary chain.
type StatusError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("render: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("render: status %d", e.Code)
}

// NewStatus creates a status signal for the given HTTP code.
func NewStatus(code int, message string) *StatusError {
	return &StatusError{Code: code, Message: message}
}

// inlineStatusHTML is the minimal built-in status page used when no
// status page route is registered for a code.
func inlineStatusHTML(code int, detail string) string {
	text := http.StatusText(code)
	if text == "" {
		text = "Error"
	}
	body := fmt.Sprintf("<h1>%d %s</h1>", code, textEscaper.Replace(text))
	if detail != "" {
		body += fmt.Sprintf("<p>%s</p>", textEscaper.Replace(detail))
	}
	return body
}

// inlineStatusMarkdown is the Markdown counterpart of inlineStatusHTML.
func inlineStatusMarkdown(code int, detail string) string {
	text := http.StatusText(code)
	if text == "" {
		text = "Error"
	}
	body := fmt.Sprintf("# %d %s\n", code, text)
	if detail != "" {
		body += "\n" + detail + "\n"
	}
	return body
}

// redirectBodyHTML builds a meta-refresh document for a redirect route.
// The target is attribute-escaped; the HTTP layer additionally gets the
// status and Location through the Result.
func redirectBodyHTML(to string) string {
	return fmt.Sprintf(
		`<!DOCTYPE html><html><head><meta http-equiv="refresh" content="0; url=%s"></head><body></body></html>`,
		attrEscaper.Replace(to))
}

// redirectBodyMarkdown builds the Markdown redirect body.
func redirectBodyMarkdown(to string) string {
	return fmt.Sprintf("Redirecting to %s\n", to)
}
