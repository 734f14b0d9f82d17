//go:build unit

package content

import (
	"errors"
	"strings"
	"testing"
)

func TestFirstParagraph(t *testing.T) {
	t.Run("skips ineligible and blank blocks", func(t *testing.T) {
		doc, _ := DecodeDocument([]byte(`[
			{"type":"img","url":"/a.png"},
			{"type":"p","children":[{"text":"   "}]},
			{"type":"ul","children":[{"type":"li","children":[{"text":"list"}]}]},
			{"type":"h2","children":[{"text":"Intro"}]},
			{"type":"p","children":[{"text":"later"}]}
		]`))
		got := string(HTML(FirstParagraph(doc)))
		if got != `<h2>Intro</h2>` {
			t.Errorf("want first heading; got %s", got)
		}
	})

	t.Run("unknown blocks are eligible", func(t *testing.T) {
		doc, _ := DecodeDocument([]byte(`[{"type":"callout","children":[{"text":"note"}]}]`))
		if got := string(HTML(FirstParagraph(doc))); got != `<p>note</p>` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("no eligible block", func(t *testing.T) {
		doc, _ := DecodeDocument([]byte(`[{"type":"hr"},{"type":"img","url":"/a.png"}]`))
		if n := FirstParagraph(doc); n != nil {
			t.Errorf("expected nil, got %v", n)
		}
		if n := FirstParagraph(nil); n != nil {
			t.Errorf("expected nil for empty document, got %v", n)
		}
	})
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	t.Run("legacy html passes through", func(t *testing.T) {
		src := "<p>already html</p>"
		if got := string(r.Render(Body{Format: FormatHTML, Source: src})); got != src {
			t.Errorf("want %s; got %s", src, got)
		}
	})

	t.Run("markdown converts", func(t *testing.T) {
		got := string(r.Render(Body{Format: FormatMarkdown, Source: "# Title\n\nsome **bold** text"}))
		if !strings.Contains(got, "<h1") || !strings.Contains(got, "<strong>bold</strong>") {
			t.Errorf("unexpected markdown output %s", got)
		}
	})

	t.Run("markdown drops raw script", func(t *testing.T) {
		got := string(r.Render(Body{Format: FormatMarkdown, Source: "hi <script>alert(1)</script>"}))
		if strings.Contains(got, "<script>") {
			t.Errorf("script survived: %s", got)
		}
	})

	t.Run("tree", func(t *testing.T) {
		body, err := ParseBody(FormatTree, `[{"type":"p","children":[{"text":"x"}]}]`)
		if err != nil {
			t.Fatal(err)
		}
		if got := string(r.Render(body)); got != "<p>x</p>" {
			t.Errorf("got %s", got)
		}
	})

	t.Run("empty tree gives placeholder", func(t *testing.T) {
		if got := string(r.Render(Body{Format: FormatTree})); !strings.Contains(got, EmptyText) {
			t.Errorf("got %s", got)
		}
	})
}

func TestRenderer_Teaser(t *testing.T) {
	r := NewRenderer()
	body, _ := ParseBody(FormatTree, `[{"type":"p","children":[{"text":"Secret intro"}]},{"type":"p","children":[{"text":"Rest of secret body"}]}]`)

	got := string(r.Teaser(body, "excerpt", false))
	if got != "<p>Secret intro</p>" {
		t.Errorf("want first block; got %s", got)
	}

	got = string(r.Teaser(body, "Draft summary", true))
	if got != "<p>Draft summary</p>" {
		t.Errorf("want excerpt; got %s", got)
	}

	empty, _ := ParseBody(FormatTree, `[{"type":"hr"}]`)
	if got := string(r.Teaser(empty, "  ", false)); got != "" {
		t.Errorf("want empty teaser; got %q", got)
	}

	md := Body{Format: FormatMarkdown, Source: "long markdown body"}
	if got := string(r.Teaser(md, "<b>summary</b>", false)); got != "<p>&lt;b&gt;summary&lt;/b&gt;</p>" {
		t.Errorf("excerpt must be escaped; got %s", got)
	}
}

func TestParseFormatAndBody(t *testing.T) {
	if f, err := ParseFormat(" Markdown "); err != nil || f != FormatMarkdown {
		t.Errorf("ParseFormat: got %q, %v", f, err)
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := ParseBody(FormatTree, `{"not":"array"}`); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
	if _, err := ParseBody(Format("pdf"), "x"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	testCases := map[string]Format{
		``:                         FormatTree,
		`[{"type":"p"}]`:           FormatTree,
		`<p>already html</p>`:      FormatHTML,
		`# heading`:                FormatMarkdown,
		`[link](http://x) in text`: FormatMarkdown,
	}
	for in, want := range testCases {
		if got := DetectFormat(in); got != want {
			t.Errorf("DetectFormat(%q) = %s; want %s", in, got, want)
		}
	}
}
