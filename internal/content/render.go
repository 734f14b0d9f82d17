package content

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmptyText is the text of the placeholder emitted for an empty document.
const EmptyText = "No content available."

// defaultLinkTarget is applied to links that do not name a target.
const defaultLinkTarget = "_blank"

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// RenderTree converts a document into HTML nodes. An empty or nil document
// yields a single placeholder paragraph so callers can tell "no body" apart
// from an empty first paragraph.
func RenderTree(doc Document) []*html.Node {
	if len(doc) == 0 {
		p := element(atom.P, attr("class", "content-empty"))
		p.AppendChild(textNode(EmptyText))
		return []*html.Node{p}
	}
	out := make([]*html.Node, 0, len(doc))
	for _, n := range doc {
		if rendered := RenderNode(n); rendered != nil {
			out = append(out, rendered)
		}
	}
	return out
}

// RenderNode renders a single node and its descendants.
func RenderNode(n Node) *html.Node {
	switch n := n.(type) {
	case nil:
		return nil
	case TextRun:
		return renderRun(n)
	case Paragraph:
		return withChildren(element(atom.P), n.Children)
	case Heading:
		if n.Level < 1 || n.Level > len(headingAtoms) {
			return withChildren(element(atom.P), n.Children)
		}
		return withChildren(element(headingAtoms[n.Level-1]), n.Children)
	case Blockquote:
		return withChildren(element(atom.Blockquote), n.Children)
	case CodeBlock:
		pre := element(atom.Pre)
		pre.AppendChild(withChildren(element(atom.Code), n.Children))
		return pre
	case List:
		if n.Ordered {
			return withChildren(element(atom.Ol), n.Children)
		}
		return withChildren(element(atom.Ul), n.Children)
	case ListItem:
		return withChildren(element(atom.Li), n.Children)
	case Image:
		return element(atom.Img, attr("src", safeURL(n.URL)), attr("alt", n.Alt))
	case Link:
		target := n.Target
		if target == "" {
			target = defaultLinkTarget
		}
		a := element(atom.A, attr("href", safeURL(n.URL)), attr("target", target))
		if target == "_blank" {
			a.Attr = append(a.Attr, attr("rel", "noopener noreferrer"))
		}
		return withChildren(a, n.Children)
	case Table:
		return withChildren(element(atom.Table), n.Children)
	case TableRow:
		return withChildren(element(atom.Tr), n.Children)
	case TableCell:
		if n.Header {
			return withChildren(element(atom.Th), n.Children)
		}
		return withChildren(element(atom.Td), n.Children)
	case Rule:
		return element(atom.Hr)
	case Fallback:
		return withChildren(element(atom.P), n.Children)
	default:
		return nil
	}
}

// runWrappers lists the style wrappers from outermost to innermost.
var runWrappers = [...]struct {
	atom atom.Atom
	on   func(TextRun) bool
}{
	{atom.Strong, func(r TextRun) bool { return r.Bold }},
	{atom.Em, func(r TextRun) bool { return r.Italic }},
	{atom.U, func(r TextRun) bool { return r.Underline }},
	{atom.S, func(r TextRun) bool { return r.Strikethrough }},
	{atom.Code, func(r TextRun) bool { return r.Code }},
}

func renderRun(r TextRun) *html.Node {
	var root, inner *html.Node
	for _, w := range runWrappers {
		if !w.on(r) {
			continue
		}
		el := element(w.atom)
		if root == nil {
			root = el
		} else {
			inner.AppendChild(el)
		}
		inner = el
	}
	text := textNode(r.Text)
	if root == nil {
		return text
	}
	inner.AppendChild(text)
	return root
}

func withChildren(parent *html.Node, kids []Node) *html.Node {
	for _, k := range kids {
		if c := RenderNode(k); c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// safeURL drops URLs with schemes that could execute script.
func safeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return raw
	default:
		return "#"
	}
}

// HTML serializes rendered nodes. Nil nodes are skipped.
func HTML(nodes ...*html.Node) template.HTML {
	var buf bytes.Buffer
	for _, n := range nodes {
		if n == nil {
			continue
		}
		// Rendering into a bytes.Buffer only fails on malformed void elements,
		// which RenderNode never produces.
		_ = html.Render(&buf, n)
	}
	return template.HTML(buf.String())
}
