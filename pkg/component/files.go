package component

import "html"

// Slot markers. A parent's rendered output contains one designated
// insertion point where its matched child's output is spliced in.
const (
	// SlotHTML is the slot placeholder in HTML output.
	SlotHTML = "<router-slot></router-slot>"

	// SlotMarkdown is the slot placeholder in Markdown output: a fenced
	// block tagged router-slot.
	SlotMarkdown = "```router-slot\n```"
)

// MarkdownOpen/MarkdownClose wrap escaped Markdown embedded in HTML output.
// The HTML renderer unescapes and expands the wrapped content through its
// configured Markdown renderer.
const (
	MarkdownOpen  = "<mark-down>"
	MarkdownClose = "</mark-down>"
)

// FileRefs declares which companion content files a route or widget has.
// Values are paths meaningful to the file loader; empty means absent.
type FileRefs struct {
	Module string `yaml:"module,omitempty" json:"module,omitempty"`
	HTML   string `yaml:"html,omitempty" json:"html,omitempty"`
	MD     string `yaml:"md,omitempty" json:"md,omitempty"`
	CSS    string `yaml:"css,omitempty" json:"css,omitempty"`
}

// Empty reports whether no files are declared.
func (r FileRefs) Empty() bool {
	return r == FileRefs{}
}

// FileContent holds loaded companion file contents.
type FileContent struct {
	HTML string
	MD   string
	CSS  string
}

// HTMLBody resolves the HTML representation of loaded content files.
// Precedence: html > md > none. A Markdown source is wrapped in a
// <mark-down> element with its content escaped, for later expansion by the
// HTML renderer.
func (c *FileContent) HTMLBody() (string, bool) {
	if c == nil {
		return "", false
	}
	if c.HTML != "" {
		return c.HTML, true
	}
	if c.MD != "" {
		return MarkdownOpen + html.EscapeString(c.MD) + MarkdownClose, true
	}
	return "", false
}

// MarkdownBody resolves the Markdown representation of loaded content
// files. Precedence: md > none. There is no html fallback for Markdown
// output.
func (c *FileContent) MarkdownBody() (string, bool) {
	if c == nil {
		return "", false
	}
	if c.MD != "" {
		return c.MD, true
	}
	return "", false
}

// PassThrough returns the default component used for a purely structural
// hierarchy level with no module of its own: it renders a bare slot so its
// child's output passes through unchanged.
func PassThrough() *Component {
	return &Component{
		RenderHTML: func(any, any, Context) (string, error) {
			return SlotHTML, nil
		},
		RenderMarkdown: func(any, any, Context) (string, error) {
			return SlotMarkdown, nil
		},
	}
}

// FromFiles builds a component whose output is derived from companion
// content files per the representation precedence tables. Levels with no
// usable representation fall back to a bare slot.
func FromFiles(content *FileContent) *Component {
	return &Component{
		RenderHTML: func(_, _ any, cc Context) (string, error) {
			src := content
			if cc.Files != nil {
				src = cc.Files
			}
			if body, ok := src.HTMLBody(); ok {
				return body, nil
			}
			return SlotHTML, nil
		},
		RenderMarkdown: func(_, _ any, cc Context) (string, error) {
			src := content
			if cc.Files != nil {
				src = cc.Files
			}
			if body, ok := src.MarkdownBody(); ok {
				return body, nil
			}
			return SlotMarkdown, nil
		},
	}
}
