package markdown

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

const (
	DefaultTheme = "github"

	TransformerNotationDiff          = "notation-diff"
	TransformerNotationHighlight     = "notation-highlight"
	TransformerNotationWordHighlight = "notation-word-highlight"
	TransformerMetaHighlight         = "meta-highlight"
	TransformerLineNumbers           = "line-numbers"
)

// DefaultTransformers is the transformer chain used when a caller does not
// name one.
func DefaultTransformers() []string {
	return []string{
		TransformerNotationDiff,
		TransformerNotationHighlight,
		TransformerNotationWordHighlight,
		TransformerMetaHighlight,
	}
}

// Config captures renderer defaults.
type Config struct {
	Theme        string
	Transformers []string
}

// Renderer implements interfaces.MarkdownRenderer on top of goldmark and
// chroma. It is safe for concurrent use.
type Renderer struct {
	engine   goldmark.Markdown
	defaults interfaces.RenderOptions
	logger   interfaces.Logger
}

var _ interfaces.MarkdownRenderer = (*Renderer)(nil)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer builds a renderer with the supplied defaults.
func NewRenderer(cfg Config, opts ...RendererOption) *Renderer {
	r := &Renderer{
		defaults: interfaces.RenderOptions{
			Theme:        strings.TrimSpace(cfg.Theme),
			Transformers: append([]string(nil), cfg.Transformers...),
		},
		logger: logging.NoOp(),
	}
	if r.defaults.Theme == "" {
		r.defaults.Theme = DefaultTheme
	}
	if len(r.defaults.Transformers) == 0 {
		r.defaults.Transformers = DefaultTransformers()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.engine = newEngine(r.logger)
	return r
}

func newEngine(logger interfaces.Logger) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(headingTransformer{}, 100),
				util.Prioritized(codeBlockTransformer{}, 200),
				util.Prioritized(linkTransformer{}, 300),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(newCodeBlockRenderer(logger), 100),
			),
		),
	)
}

// Render converts source into HTML, a table of contents and a reading time
// estimate. Malformed input never fails; only a cancelled context does.
func (r *Renderer) Render(ctx context.Context, source []byte, opts interfaces.RenderOptions) (*interfaces.RenderedDocument, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pc := parser.NewContext()
	pc.Set(optionsKey, r.resolve(opts))

	doc := r.engine.Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.engine.Renderer().Render(&buf, source, doc); err != nil {
		// Only a failing writer errors here; serve the escaped source instead.
		r.logger.Error("markdown.render.failed", "error", err)
		buf.Reset()
		buf.WriteString("<pre>")
		buf.WriteString(string(util.EscapeHTML(source)))
		buf.WriteString("</pre>\n")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &interfaces.RenderedDocument{
		HTML:        buf.String(),
		TOC:         tocFromContext(pc),
		ReadMinutes: ReadingMinutes(source),
	}, nil
}

func (r *Renderer) resolve(opts interfaces.RenderOptions) interfaces.RenderOptions {
	resolved := interfaces.RenderOptions{
		Theme:        strings.TrimSpace(opts.Theme),
		Transformers: opts.Transformers,
	}
	if resolved.Theme == "" {
		resolved.Theme = r.defaults.Theme
	}
	if len(resolved.Transformers) == 0 {
		resolved.Transformers = r.defaults.Transformers
	}
	resolved.Transformers = append([]string(nil), resolved.Transformers...)
	return resolved
}

var optionsKey = parser.NewContextKey()

func optionsFromContext(pc parser.Context) interfaces.RenderOptions {
	if pc == nil {
		return interfaces.RenderOptions{Theme: DefaultTheme, Transformers: DefaultTransformers()}
	}
	if opts, ok := pc.Get(optionsKey).(interfaces.RenderOptions); ok {
		return opts
	}
	return interfaces.RenderOptions{Theme: DefaultTheme, Transformers: DefaultTransformers()}
}
