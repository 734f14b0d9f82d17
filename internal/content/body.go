package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format identifies which representation of a body is authoritative.
type Format string

const (
	FormatTree     Format = "tree"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ErrUnknownFormat is returned for a body format outside the known set.
var ErrUnknownFormat = errors.New("content: unknown body format")

// ParseFormat validates a stored or submitted format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTree, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// DetectFormat guesses the format of legacy data that was stored without one.
// A JSON array is a tree, anything starting with a tag is pre-rendered HTML,
// and the rest is treated as markdown.
func DetectFormat(raw string) Format {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return FormatTree
	case strings.HasPrefix(s, "[") && json.Valid([]byte(s)):
		return FormatTree
	case strings.HasPrefix(s, "<"):
		return FormatHTML
	default:
		return FormatMarkdown
	}
}

// Body is a parsed article body. Tree is set for FormatTree, Source otherwise.
type Body struct {
	Format Format
	Tree   Document
	Source string
}

// ParseBody builds a Body from its stored form. For a tree with bad nodes
// the error is returned together with the nodes that did decode.
func ParseBody(format Format, raw string) (Body, error) {
	switch format {
	case FormatTree:
		doc, err := DecodeDocument([]byte(raw))
		return Body{Format: FormatTree, Tree: doc}, err
	case FormatMarkdown, FormatHTML:
		return Body{Format: format, Source: raw}, nil
	default:
		return Body{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Renderer turns bodies into HTML. It is safe for concurrent use.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewRenderer creates a Renderer with GitHub-flavoured markdown and a UGC
// sanitizing policy that also keeps images.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("img")
	policy.AllowAttrs("src", "alt").OnElements("img")

	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   policy,
	}
}

// Sanitize cleans user-supplied HTML before it is stored.
func (r *Renderer) Sanitize(raw string) string {
	return r.policy.Sanitize(raw)
}

// Render produces the full HTML for a body.
//
// Pre-rendered HTML is passed through untouched; it was sanitized when it was
// saved. Markdown that fails to convert is shown as its escaped source.
func (r *Renderer) Render(b Body) template.HTML {
	switch b.Format {
	case FormatHTML:
		return template.HTML(b.Source)
	case FormatMarkdown:
		return r.renderMarkdown(b.Source)
	default:
		return HTML(RenderTree(b.Tree)...)
	}
}

func (r *Renderer) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Teaser produces the partial reveal for a locked render. Tree bodies show
// their first eligible block unless fromExcerpt is set; everything else falls
// back to the excerpt. An empty excerpt gives an empty teaser.
func (r *Renderer) Teaser(b Body, excerpt string, fromExcerpt bool) template.HTML {
	if !fromExcerpt && b.Format == FormatTree {
		if n := FirstParagraph(b.Tree); n != nil {
			return HTML(n)
		}
	}
	excerpt = strings.TrimSpace(excerpt)
	if excerpt == "" {
		return ""
	}
	return template.HTML("<p>" + template.HTMLEscapeString(excerpt) + "</p>")
}
