package interfaces

import (
	"context"
	"time"
)

// MarkdownRenderer converts Markdown into embeddable HTML plus a table of
// contents. Implementations must be deterministic and must not fail on
// malformed input.
type MarkdownRenderer interface {
	Render(ctx context.Context, markdown []byte, opts RenderOptions) (*RenderedDocument, error)
}

// RenderOptions selects the highlighting theme and the ordered list of code
// block transformers applied after highlighting. Empty values fall back to the
// renderer defaults.
type RenderOptions struct {
	Theme        string   `json:"theme,omitempty"`
	Transformers []string `json:"transformers,omitempty"`
}

// RenderedDocument is the output of a single render call.
type RenderedDocument struct {
	HTML        string     `json:"html"`
	TOC         []TOCEntry `json:"toc"`
	ReadMinutes int        `json:"read_minutes"`
}

// TOCEntry describes a heading of level two or deeper.
type TOCEntry struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Document is a stored Markdown source with its front matter split off.
type Document struct {
	Slug        string
	FrontMatter FrontMatter
	Body        []byte
}

// FrontMatter models the metadata block at the top of a Markdown document.
type FrontMatter struct {
	Title       string
	Description string
	Tags        []string
	Category    string
	CoverImage  string
	Date        time.Time
	Published   bool
	Custom      map[string]any
	Raw         map[string]any
}

// DocumentSource exposes stored Markdown documents by slug.
type DocumentSource interface {
	Load(ctx context.Context, slug string) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
}
