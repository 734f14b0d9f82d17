package content

import (
	"strings"

	"golang.org/x/net/html"
)

// FirstParagraph renders the first top-level block that can stand alone as a
// teaser: a paragraph, heading, blockquote or unrecognised block with
// non-blank text. It returns nil when no such block exists.
//
// Only the matching block is rendered; nothing after it is touched.
func FirstParagraph(doc Document) *html.Node {
	for _, n := range doc {
		if teaserEligible(n) {
			return RenderNode(n)
		}
	}
	return nil
}

func teaserEligible(n Node) bool {
	switch n.(type) {
	case Paragraph, Heading, Blockquote, Fallback:
		return strings.TrimSpace(PlainText(n)) != ""
	default:
		return false
	}
}
