package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

func testLibrary() fstest.MapFS {
	return fstest.MapFS{
		"articles/hello.md": &fstest.MapFile{Data: []byte("---\ntitle: Hello\ndescription: First post\ntags: [go, notes]\ncategory: dev\ncover_image: /storage/v1/object/public/uploads/cover.png\nseries: intro\n---\n## Getting Started\n\nBody text.\n")},
		"articles/draft.md": &fstest.MapFile{Data: []byte("---\ntitle: Draft\npublished: false\n---\nNot yet.\n")},
		"articles/plain.md": &fstest.MapFile{Data: []byte("# No front matter\n")},
		"articles/notes.txt": &fstest.MapFile{Data: []byte("ignored")},
	}
}

func TestParseFrontMatter(t *testing.T) {
	fm, body, err := ParseFrontMatter(testLibrary()["articles/hello.md"].Data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "Hello" || fm.Description != "First post" || fm.Category != "dev" {
		t.Fatalf("unexpected front matter %+v", fm)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "go" {
		t.Fatalf("unexpected tags %v", fm.Tags)
	}
	if !fm.Published {
		t.Fatal("expected documents to default to published")
	}
	if fm.Custom["series"] != "intro" {
		t.Fatalf("expected custom field, got %v", fm.Custom)
	}
	if fm.Raw["title"] != "Hello" {
		t.Fatalf("expected raw title, got %v", fm.Raw)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(body)), "## Getting Started") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLoaderLoadAndList(t *testing.T) {
	loader := NewLoader(testLibrary(), "articles")

	doc, err := loader.Load(context.Background(), "plain")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Slug != "plain" || !doc.FrontMatter.Published {
		t.Fatalf("unexpected document %+v", doc)
	}

	docs, err := loader.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var slugs []string
	for _, d := range docs {
		slugs = append(slugs, d.Slug)
	}
	if strings.Join(slugs, ",") != "draft,hello,plain" {
		t.Fatalf("unexpected slugs %v", slugs)
	}
}

func TestLoaderRejectsTraversal(t *testing.T) {
	loader := NewLoader(testLibrary(), "articles")

	for _, slug := range []string{"../articles/hello", "", ".hidden", "a/b"} {
		if _, err := loader.Load(context.Background(), slug); !errors.Is(err, ErrDocumentNotFound) {
			t.Fatalf("expected not found for %q, got %v", slug, err)
		}
	}
}

func TestServiceArticle(t *testing.T) {
	svc := NewService(nil, NewLoader(testLibrary(), "articles"))

	article, err := svc.Article(context.Background(), "hello", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if article.Document.FrontMatter.Title != "Hello" {
		t.Fatalf("unexpected document %+v", article.Document)
	}
	if len(article.Rendered.TOC) != 1 || article.Rendered.TOC[0].ID != "getting-started" {
		t.Fatalf("unexpected toc %+v", article.Rendered.TOC)
	}

	if _, err := svc.Article(context.Background(), "draft", interfaces.RenderOptions{}); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected unpublished draft to be hidden, got %v", err)
	}
	if _, err := svc.Article(context.Background(), "missing", interfaces.RenderOptions{}); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected missing article to be not found, got %v", err)
	}
}

func TestServiceRenderDocumentRequiresDocument(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.RenderDocument(context.Background(), nil, interfaces.RenderOptions{}); !errors.Is(err, ErrDocumentRequired) {
		t.Fatalf("expected ErrDocumentRequired, got %v", err)
	}
}

func TestDocumentReferencesIncludeDrafts(t *testing.T) {
	refs, err := DocumentReferences{Source: NewLoader(testLibrary(), "articles")}.MediaReferences(context.Background())
	if err != nil {
		t.Fatalf("MediaReferences: %v", err)
	}
	joined := strings.Join(refs, "\n")
	if !strings.Contains(joined, "/storage/v1/object/public/uploads/cover.png") {
		t.Fatalf("expected cover image reference, got %q", joined)
	}
	if !strings.Contains(joined, "Not yet.") {
		t.Fatalf("expected draft body to be scanned, got %q", joined)
	}

	if _, err := (DocumentReferences{}).MediaReferences(context.Background()); err == nil {
		t.Fatal("expected error without a source")
	}
}
