package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned when stored tree JSON cannot be decoded.
var ErrMalformedDocument = errors.New("content: malformed document")

// rawNode is the persisted JSON shape of both blocks and text runs.
type rawNode struct {
	Type     string            `json:"type"`
	Children []json.RawMessage `json:"children"`

	Text          *string `json:"text"`
	Bold          bool    `json:"bold"`
	Italic        bool    `json:"italic"`
	Underline     bool    `json:"underline"`
	Strikethrough bool    `json:"strikethrough"`
	Code          bool    `json:"code"`

	URL    string `json:"url"`
	Src    string `json:"src"`
	Href   string `json:"href"`
	Alt    string `json:"alt"`
	Target string `json:"target"`
}

// DecodeDocument parses the JSON form of a document tree. A JSON null or an
// empty input decodes to an empty document.
//
// A node that cannot be decoded is dropped and reported in the returned
// error, while the rest of the document is still returned. Callers that
// accept only clean input check the error; readers render what survived.
func DecodeDocument(raw []byte) (Document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Document{}, nil
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: top level is not an array", ErrMalformedDocument)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	nodes, err := decodeNodes(items, "")
	return Document(nodes), err
}

func decodeNodes(items []json.RawMessage, path string) ([]Node, error) {
	out := make([]Node, 0, len(items))
	var errs []error
	for i, item := range items {
		n, err := decodeNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			errs = append(errs, err)
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, errors.Join(errs...)
}

func decodeNode(item json.RawMessage, path string) (Node, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || bytes.Equal(item, []byte("null")) {
		return nil, nil
	}
	switch item[0] {
	case '"':
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("%w at %s: %v", ErrMalformedDocument, path, err)
		}
		return TextRun{Text: s}, nil
	case '{':
	default:
		return nil, fmt.Errorf("%w at %s: expected object or string", ErrMalformedDocument, path)
	}

	var r rawNode
	if err := json.Unmarshal(item, &r); err != nil {
		return nil, fmt.Errorf("%w at %s: %v", ErrMalformedDocument, path, err)
	}
	// Children that fail to decode are dropped; the node itself survives.
	kids, err := decodeNodes(r.Children, path+".children")

	if r.Text != nil && len(kids) == 0 {
		run := TextRun{
			Text:          *r.Text,
			Bold:          r.Bold,
			Italic:        r.Italic,
			Underline:     r.Underline,
			Strikethrough: r.Strikethrough,
			Code:          r.Code,
		}
		if !isBlockType(r.Type) {
			return run, err
		}
		// A block that stores its text inline instead of in children.
		kids = []Node{run}
	}

	return blockNode(r, kids), err
}

func isBlockType(t string) bool {
	switch t {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "code_block",
		"ul", "ol", "li", "img", "a", "table", "tr", "td", "th", "hr":
		return true
	}
	return false
}

func blockNode(r rawNode, kids []Node) Node {
	switch r.Type {
	case "p":
		return Paragraph{Children: kids}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return Heading{Level: int(r.Type[1] - '0'), Children: kids}
	case "blockquote":
		return Blockquote{Children: kids}
	case "code_block":
		return CodeBlock{Children: kids}
	case "ul":
		return List{Children: kids}
	case "ol":
		return List{Ordered: true, Children: kids}
	case "li":
		return ListItem{Children: kids}
	case "img":
		return Image{URL: firstNonEmpty(r.URL, r.Src), Alt: r.Alt}
	case "a":
		return Link{URL: firstNonEmpty(r.URL, r.Href), Target: r.Target, Children: kids}
	case "table":
		return Table{Children: kids}
	case "tr":
		return TableRow{Children: kids}
	case "td":
		return TableCell{Children: kids}
	case "th":
		return TableCell{Header: true, Children: kids}
	case "hr":
		return Rule{}
	default:
		return Fallback{Type: r.Type, Children: kids}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
