package markdown

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

func render(t *testing.T, source string, opts interfaces.RenderOptions) *interfaces.RenderedDocument {
	t.Helper()
	doc, err := NewRenderer(Config{}).Render(context.Background(), []byte(source), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return doc
}

func preSection(t *testing.T, html string) string {
	t.Helper()
	start := strings.Index(html, "<pre")
	end := strings.Index(html, "</pre>")
	if start < 0 || end < start {
		t.Fatalf("expected a <pre> block in %q", html)
	}
	return html[start : end+len("</pre>")]
}

func TestRenderLevelOneHeadingHasAnchorButNoTOCEntry(t *testing.T) {
	doc := render(t, "# Hello World", interfaces.RenderOptions{})

	if len(doc.TOC) != 0 {
		t.Fatalf("expected empty toc, got %+v", doc.TOC)
	}
	if !strings.Contains(doc.HTML, `<h1 id="hello-world">`) {
		t.Fatalf("expected heading anchor id, got %q", doc.HTML)
	}
}

func TestRenderDisambiguatesDuplicateHeadings(t *testing.T) {
	doc := render(t, "## Hello World\n\n## Hello World\n\n### Details", interfaces.RenderOptions{})

	want := []interfaces.TOCEntry{
		{ID: "hello-world", Text: "Hello World", Level: 2},
		{ID: "hello-world-1", Text: "Hello World", Level: 2},
		{ID: "details", Text: "Details", Level: 3},
	}
	if len(doc.TOC) != len(want) {
		t.Fatalf("expected %d toc entries, got %+v", len(want), doc.TOC)
	}
	for i := range want {
		if doc.TOC[i] != want[i] {
			t.Fatalf("toc[%d] = %+v, want %+v", i, doc.TOC[i], want[i])
		}
	}
	if !strings.Contains(doc.HTML, `id="hello-world-1"`) {
		t.Fatalf("expected suffixed id in html, got %q", doc.HTML)
	}
}

func TestRenderHeadingTextIgnoresInlineMarkup(t *testing.T) {
	doc := render(t, "## Using `go test` **fast**", interfaces.RenderOptions{})

	if len(doc.TOC) != 1 {
		t.Fatalf("expected one toc entry, got %+v", doc.TOC)
	}
	if doc.TOC[0].Text != "Using go test fast" || doc.TOC[0].ID != "using-go-test-fast" {
		t.Fatalf("unexpected toc entry %+v", doc.TOC[0])
	}
}

func TestRenderCJKHeading(t *testing.T) {
	doc := render(t, "## 你好 世界", interfaces.RenderOptions{})

	if len(doc.TOC) != 1 || doc.TOC[0].ID != "你好-世界" {
		t.Fatalf("unexpected toc %+v", doc.TOC)
	}
}

func TestRenderFilenameDoesNotAffectHighlighting(t *testing.T) {
	code := "const answer: number = 42;\nconsole.log(answer);\n"
	withName := render(t, "```ts:app.ts\n"+code+"```\n", interfaces.RenderOptions{})
	plain := render(t, "```ts\n"+code+"```\n", interfaces.RenderOptions{})

	if !strings.Contains(withName.HTML, `<span class="code-language">ts</span>`) {
		t.Fatalf("expected language label ts, got %q", withName.HTML)
	}
	if !strings.Contains(withName.HTML, `<span class="code-filename">app.ts</span>`) {
		t.Fatalf("expected filename label, got %q", withName.HTML)
	}
	if strings.Contains(plain.HTML, "code-filename") {
		t.Fatalf("expected no filename label without suffix, got %q", plain.HTML)
	}
	if preSection(t, withName.HTML) != preSection(t, plain.HTML) {
		t.Fatalf("expected identical highlighting\nwith name: %s\nplain:     %s", preSection(t, withName.HTML), preSection(t, plain.HTML))
	}
	if !strings.Contains(withName.HTML, `class="copy-btn"`) {
		t.Fatalf("expected copy button, got %q", withName.HTML)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	source := "# Title\n\n## Section\n\n```go {1}\npackage main // [!code ++]\n```\n\nSee https://example.com and <b>raw</b>."
	first := render(t, source, interfaces.RenderOptions{Theme: "monokai"})
	second := render(t, source, interfaces.RenderOptions{Theme: "monokai"})

	if first.HTML != second.HTML {
		t.Fatalf("expected byte identical html")
	}
	if len(first.TOC) != len(second.TOC) {
		t.Fatalf("expected identical toc")
	}
}

func TestRenderConcurrentCallsDoNotShareState(t *testing.T) {
	renderer := NewRenderer(Config{})
	source := []byte("## One\n\n## One\n\n```python\nprint('x')\n```\n")
	want, err := renderer.Render(context.Background(), source, interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := renderer.Render(context.Background(), source, interfaces.RenderOptions{})
			if err != nil {
				errs <- err.Error()
				return
			}
			if got.HTML != want.HTML || len(got.TOC) != 2 || got.TOC[1].ID != "one-1" {
				errs <- "divergent output"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

func TestRenderUnknownLanguageFallsBackToPlainText(t *testing.T) {
	doc := render(t, "```nosuchlang\nplain words here\n```\n", interfaces.RenderOptions{})

	if !strings.Contains(doc.HTML, "plain words here") {
		t.Fatalf("expected raw text in output, got %q", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `<span class="code-language">nosuchlang</span>`) {
		t.Fatalf("expected declared language label, got %q", doc.HTML)
	}
}

func TestRenderUntaggedFenceLabelsText(t *testing.T) {
	doc := render(t, "```\nhello\n```\n", interfaces.RenderOptions{})

	if !strings.Contains(doc.HTML, `<span class="code-language">text</span>`) {
		t.Fatalf("expected text label, got %q", doc.HTML)
	}
}

func TestRenderPassesRawHTMLThrough(t *testing.T) {
	doc := render(t, "<div class=\"callout\">Heads up</div>\n\nInline <kbd>Ctrl</kbd>.", interfaces.RenderOptions{})

	if !strings.Contains(doc.HTML, `<div class="callout">Heads up</div>`) {
		t.Fatalf("expected raw block html, got %q", doc.HTML)
	}
	if !strings.Contains(doc.HTML, "<kbd>Ctrl</kbd>") {
		t.Fatalf("expected raw inline html, got %q", doc.HTML)
	}
}

func TestRenderHardensExternalLinks(t *testing.T) {
	doc := render(t, "[out](https://example.com) and [in](/articles/local)", interfaces.RenderOptions{})

	if !strings.Contains(doc.HTML, `href="https://example.com" target="_blank" rel="noopener noreferrer"`) {
		t.Fatalf("expected hardened external link, got %q", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `<a href="/articles/local">in</a>`) {
		t.Fatalf("expected local link untouched, got %q", doc.HTML)
	}
}

func TestRenderGFMExtensions(t *testing.T) {
	doc := render(t, "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n- [x] done\n", interfaces.RenderOptions{})

	for _, want := range []string{"<table>", "<del>gone</del>", `type="checkbox"`} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %q in %q", want, doc.HTML)
		}
	}
}

func TestRenderNotationTransformers(t *testing.T) {
	source := "```js\n" +
		"const a = 1 // [!code ++]\n" +
		"const b = 2 // [!code --]\n" +
		"// [!code highlight]\n" +
		"const c = 3\n" +
		"const greeting = 4 // [!code word:greeting]\n" +
		"```\n"
	doc := render(t, source, interfaces.RenderOptions{})

	if strings.Contains(doc.HTML, "[!code") {
		t.Fatalf("expected notation comments to be stripped, got %q", doc.HTML)
	}
	for _, want := range []string{
		`<pre class="chroma has-diff has-highlighted has-highlighted-words"`,
		`<span class="line diff add" data-line="1">`,
		`<span class="line diff remove" data-line="2">`,
		`<span class="line highlighted" data-line="3">`,
		`<span class="highlighted-word">greeting</span>`,
	} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %q in %q", want, doc.HTML)
		}
	}
	if strings.Contains(doc.HTML, `data-line="5"`) {
		t.Fatalf("expected comment-only line to be removed, got %q", doc.HTML)
	}
}

func TestRenderNotationRespectsTransformerSelection(t *testing.T) {
	source := "```js\nconst a = 1 // [!code ++]\n```\n"
	doc := render(t, source, interfaces.RenderOptions{Transformers: []string{TransformerNotationHighlight}})

	if strings.Contains(doc.HTML, "diff add") {
		t.Fatalf("expected diff notation to be left alone, got %q", doc.HTML)
	}
	if !strings.Contains(doc.HTML, "[!code ++]") {
		t.Fatalf("expected unhandled notation to stay in the code, got %q", doc.HTML)
	}
}

func TestRenderMetaHighlightAndLineNumbers(t *testing.T) {
	source := "```go {2,4-5}\na := 1\nb := 2\nc := 3\nd := 4\ne := 5\n```\n"
	doc := render(t, source, interfaces.RenderOptions{
		Transformers: []string{TransformerMetaHighlight, "no-such-transformer", TransformerLineNumbers},
	})

	for _, want := range []string{
		`<span class="line highlighted" data-line="2">`,
		`<span class="line highlighted" data-line="4">`,
		`<span class="line highlighted" data-line="5">`,
		`<span class="line" data-line="1">`,
		"line-numbers",
		`--line-width: 1ch;`,
	} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %q in %q", want, doc.HTML)
		}
	}
}

func TestRenderLineWidthTracksLineCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("```text\n")
	for i := 0; i < 12; i++ {
		b.WriteString("line\n")
	}
	b.WriteString("```\n")
	doc := render(t, b.String(), interfaces.RenderOptions{})

	if !strings.Contains(doc.HTML, `--line-width: 2ch;`) {
		t.Fatalf("expected two digit line width, got %q", doc.HTML)
	}
}

func TestRenderMermaidBlocksSkipHighlighting(t *testing.T) {
	doc := render(t, "```mermaid\ngraph TD;\nA-->B\n```\n", interfaces.RenderOptions{})

	if !strings.Contains(doc.HTML, "<pre class=\"mermaid\">graph TD;\nA--&gt;B</pre>") {
		t.Fatalf("expected mermaid block, got %q", doc.HTML)
	}
	if strings.Contains(doc.HTML, "copy-btn") {
		t.Fatalf("expected no code decoration on mermaid block, got %q", doc.HTML)
	}
}

func TestRenderMalformedInputDoesNotFail(t *testing.T) {
	doc := render(t, "```\nunterminated fence\n\n[broken](link\n\n<div>", interfaces.RenderOptions{})
	if doc.HTML == "" {
		t.Fatal("expected output for malformed input")
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(Config{}).Render(ctx, []byte("# hi"), interfaces.RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderReportsReadingTime(t *testing.T) {
	doc := render(t, strings.Repeat("word ", 450), interfaces.RenderOptions{})
	if doc.ReadMinutes != 3 {
		t.Fatalf("expected 3 minutes, got %d", doc.ReadMinutes)
	}
}
