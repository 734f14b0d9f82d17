//go:build unit

package importer

import (
	"context"
	"errors"
	"go-club-app/internal/data"
	"go-club-app/internal/logger"
	"go-club-app/internal/service"
	"testing"
	"testing/fstest"
)

type mockSaver struct {
	saved []service.ArticleInput
}

var _ Saver = (*mockSaver)(nil)

func (m *mockSaver) SaveArticle(ctx context.Context, in service.ArticleInput) (*data.Article, error) {
	if len(in.Title) < 3 {
		return nil, errors.New("title too short")
	}
	m.saved = append(m.saved, in)
	slug := in.Slug
	if slug == "" {
		slug = service.Slugify(in.Title)
	}
	return &data.Article{Slug: slug, Title: in.Title}, nil
}

func TestSplitFrontMatter(t *testing.T) {
	fm, body, err := SplitFrontMatter([]byte("---\ntitle: Hello\npublic: true\nsubscriber_only: true\n---\n\n# Body\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "Hello" || !fm.Public || !fm.SubscriberOnly {
		t.Errorf("unexpected front matter %+v", fm)
	}
	if body != "# Body" {
		t.Errorf("unexpected body %q", body)
	}

	fm, body, err = SplitFrontMatter([]byte("plain text"))
	if err != nil || fm.Title != "" || body != "plain text" {
		t.Errorf("file without front matter: %+v %q %v", fm, body, err)
	}

	if _, _, err := SplitFrontMatter([]byte("---\ntitle: x\n")); err == nil {
		t.Error("expected an error for unclosed front matter")
	}
	if _, _, err := SplitFrontMatter([]byte("---\ntitle: [\n---\nbody")); err == nil {
		t.Error("expected an error for invalid yaml")
	}
}

func TestImporter_Import(t *testing.T) {
	fsys := fstest.MapFS{
		"posts/welcome.md":     {Data: []byte("---\ntitle: Welcome aboard\nexcerpt: Hi\npublic: true\n---\nHello *club*.")},
		"posts/members.json":   {Data: []byte("---\ntitle: Members corner\nslug: corner\npublic: true\nsubscriber_only: true\n---\n[{\"type\":\"p\",\"children\":[{\"text\":\"x\"}]}]")},
		"posts/legacy.txt":     {Data: []byte("<p>Old page</p>")},
		"posts/x.md":           {Data: []byte("too short title")},
		"posts/broken.html":    {Data: []byte("---\ntitle: never closed")},
		"posts/image.png":      {Data: []byte{0x89, 'P', 'N', 'G'}},
		"posts/nested/deep.md": {Data: []byte("---\ntitle: Deep dive\n---\nText")},
	}
	saver := &mockSaver{}
	res, err := New(saver, "importer", logger.Nop()).Import(context.Background(), fsys, "posts")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if len(res.Imported) != 4 {
		t.Errorf("expected 4 imported articles, got %v", res.Imported)
	}
	if len(res.Skipped) != 2 {
		t.Errorf("expected 2 skipped files, got %v", res.Skipped)
	}
	if _, ok := res.Skipped["posts/image.png"]; ok {
		t.Error("unrelated files must be ignored, not skipped")
	}

	byTitle := map[string]service.ArticleInput{}
	for _, in := range saver.saved {
		byTitle[in.Title] = in
	}
	if in := byTitle["Welcome aboard"]; in.Format != "markdown" || !in.IsPublic || in.Excerpt != "Hi" || in.AuthorID != "importer" {
		t.Errorf("unexpected markdown import %+v", in)
	}
	if in := byTitle["Members corner"]; in.Format != "tree" || in.Slug != "corner" || !in.IsSubscriberOnly {
		t.Errorf("unexpected tree import %+v", in)
	}
	if in := byTitle["legacy"]; in.Format != "html" || in.IsPublic {
		t.Errorf("expected a detected html draft named after the file, got %+v", in)
	}
}

func TestImporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fsys := fstest.MapFS{"a.md": {Data: []byte("Body")}}
	if _, err := New(&mockSaver{}, "", logger.Nop()).Import(ctx, fsys, "."); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
