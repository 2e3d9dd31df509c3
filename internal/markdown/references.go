package markdown

import (
	"context"
	"errors"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

// DocumentReferences yields the body and cover image of every document in
// Source, published or not.
type DocumentReferences struct {
	Source interfaces.DocumentSource
}

// MediaReferences implements media.ReferenceSource.
func (d DocumentReferences) MediaReferences(ctx context.Context) ([]string, error) {
	if d.Source == nil {
		return nil, errors.New("markdown: document source required")
	}
	docs, err := d.Source.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(docs)*2)
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if doc.FrontMatter.CoverImage != "" {
			out = append(out, doc.FrontMatter.CoverImage)
		}
		out = append(out, string(doc.Body))
	}
	return out, nil
}
