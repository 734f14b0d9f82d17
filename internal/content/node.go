// Package content holds the rich-text document model used for article bodies
// and turns it into HTML.
//
// A Document is an ordered list of Nodes. Each block kind is its own Go type;
// a TextRun is the only leaf that carries text. Unknown block kinds found in
// stored data decode to Fallback, which renders exactly like a Paragraph.
package content

import "strings"

// Node is implemented by every element of a document tree.
type Node interface {
	node()
}

// Document is the ordered top-level sequence of a rich-text body.
type Document []Node

// TextRun is a leaf carrying literal text and independent style flags.
type TextRun struct {
	Text          string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Code          bool
}

// Paragraph is a plain block of inline content.
type Paragraph struct {
	Children []Node
}

// Heading is a section heading; Level is 1..6.
type Heading struct {
	Level    int
	Children []Node
}

// Blockquote is a quoted block.
type Blockquote struct {
	Children []Node
}

// CodeBlock is a verbatim monospace block.
type CodeBlock struct {
	Children []Node
}

// List is a bulleted or numbered list; its children are normally ListItems.
type List struct {
	Ordered  bool
	Children []Node
}

// ListItem is a single list entry.
type ListItem struct {
	Children []Node
}

// Image is a leaf image block.
type Image struct {
	URL string
	Alt string
}

// Link wraps its children in a hyperlink. An empty Target means "_blank".
type Link struct {
	URL      string
	Target   string
	Children []Node
}

// Table, TableRow and TableCell are rendered as plain structure.
type Table struct {
	Children []Node
}

type TableRow struct {
	Children []Node
}

type TableCell struct {
	Header   bool
	Children []Node
}

// Rule is a horizontal rule.
type Rule struct{}

// Fallback is a block whose type tag is not recognised. It keeps the original
// tag for diagnostics and is rendered as a paragraph.
type Fallback struct {
	Type     string
	Children []Node
}

func (TextRun) node()    {}
func (Paragraph) node()  {}
func (Heading) node()    {}
func (Blockquote) node() {}
func (CodeBlock) node()  {}
func (List) node()       {}
func (ListItem) node()   {}
func (Image) node()      {}
func (Link) node()       {}
func (Table) node()      {}
func (TableRow) node()   {}
func (TableCell) node()  {}
func (Rule) node()       {}
func (Fallback) node()   {}

// children returns the nested nodes of n, or nil for leaves.
func children(n Node) []Node {
	switch n := n.(type) {
	case Paragraph:
		return n.Children
	case Heading:
		return n.Children
	case Blockquote:
		return n.Children
	case CodeBlock:
		return n.Children
	case List:
		return n.Children
	case ListItem:
		return n.Children
	case Link:
		return n.Children
	case Table:
		return n.Children
	case TableRow:
		return n.Children
	case TableCell:
		return n.Children
	case Fallback:
		return n.Children
	default:
		return nil
	}
}

// PlainText returns the concatenated text of n and everything below it.
func PlainText(n Node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n Node) {
	if run, ok := n.(TextRun); ok {
		b.WriteString(run.Text)
		return
	}
	for _, c := range children(n) {
		writeText(b, c)
	}
}
