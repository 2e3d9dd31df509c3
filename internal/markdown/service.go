package markdown

import (
	"context"
	"errors"
	"fmt"

	"github.com/wynotes/go-notes/internal/logging"
	"github.com/wynotes/go-notes/pkg/interfaces"
)

// ErrDocumentRequired is returned when RenderDocument receives a nil document.
var ErrDocumentRequired = errors.New("markdown service: document is nil")

// Article is a published document together with its rendering.
type Article struct {
	Document *interfaces.Document
	Rendered *interfaces.RenderedDocument
}

// Service renders stored documents.
type Service struct {
	renderer interfaces.MarkdownRenderer
	source   interfaces.DocumentSource
	logger   interfaces.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires a renderer to an optional document source. A nil renderer
// falls back to NewRenderer with default configuration.
func NewService(renderer interfaces.MarkdownRenderer, source interfaces.DocumentSource, opts ...ServiceOption) *Service {
	s := &Service{
		renderer: renderer,
		source:   source,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		s.renderer = NewRenderer(Config{}, WithLogger(s.logger))
	}
	return s
}

// Render proxies to the configured renderer.
func (s *Service) Render(ctx context.Context, source []byte, opts interfaces.RenderOptions) (*interfaces.RenderedDocument, error) {
	return s.renderer.Render(ctx, source, opts)
}

// RenderDocument renders the body of doc, ignoring its front matter.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.RenderOptions) (*interfaces.RenderedDocument, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	rendered, err := s.renderer.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.Slug, err)
	}
	return rendered, nil
}

// Article loads and renders a published document. Unpublished documents are
// reported as not found.
func (s *Service) Article(ctx context.Context, slug string, opts interfaces.RenderOptions) (*Article, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, slug)
	}
	doc, err := s.source.Load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !doc.FrontMatter.Published {
		s.logger.Debug("markdown.article.unpublished", "slug", slug)
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, slug)
	}
	rendered, err := s.RenderDocument(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	return &Article{Document: doc, Rendered: rendered}, nil
}

// Documents lists the documents of the configured source.
func (s *Service) Documents(ctx context.Context) ([]*interfaces.Document, error) {
	if s.source == nil {
		return nil, nil
	}
	return s.source.List(ctx)
}
