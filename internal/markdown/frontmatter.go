package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

// ParseFrontMatter splits a stored document into its metadata and Markdown
// body. Documents without front matter return an empty FrontMatter and the
// full source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument parses source into a Document addressed by slug.
func BuildDocument(slug string, source []byte) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	return &interfaces.Document{
		Slug:        slug,
		FrontMatter: fm,
		Body:        body,
	}, nil
}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Tags        []string       `yaml:"tags"`
	Category    string         `yaml:"category"`
	CoverImage  string         `yaml:"cover_image"`
	Date        time.Time      `yaml:"date"`
	Published   *bool          `yaml:"published"`
	Custom      map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	raw := make(map[string]any, len(env.Custom)+8)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Description != "" {
		raw["description"] = env.Description
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Category != "" {
		raw["category"] = env.Category
	}
	if env.CoverImage != "" {
		raw["cover_image"] = env.CoverImage
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}

	// Documents are published unless they opt out.
	published := true
	if env.Published != nil {
		published = *env.Published
	}
	raw["published"] = published

	return interfaces.FrontMatter{
		Title:       env.Title,
		Description: env.Description,
		Tags:        append([]string(nil), env.Tags...),
		Category:    env.Category,
		CoverImage:  env.CoverImage,
		Date:        env.Date,
		Published:   published,
		Custom:      cloneMap(env.Custom),
		Raw:         raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
