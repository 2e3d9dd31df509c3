package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

// ErrDocumentNotFound is returned when no document exists for a slug.
var ErrDocumentNotFound = errors.New("markdown: document not found")

const documentExt = ".md"

// Loader serves Markdown documents stored as <slug>.md files in a
// filesystem.
type Loader struct {
	fs   fs.FS
	root string
}

var _ interfaces.DocumentSource = (*Loader)(nil)

// NewLoader constructs a loader reading from root within filesystem.
func NewLoader(filesystem fs.FS, root string) *Loader {
	root = strings.Trim(path.Clean("/"+root), "/")
	if root == "" {
		root = "."
	}
	return &Loader{fs: filesystem, root: root}
}

// Load reads and parses the document stored for slug.
func (l *Loader) Load(ctx context.Context, slug string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slug = strings.TrimSpace(slug)
	if !validSlug(slug) {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, slug)
	}

	name := path.Join(l.root, slug+documentExt)
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, slug)
		}
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	return BuildDocument(slug, data)
}

// List returns every document under the root, newest first and then by slug.
func (l *Loader) List(ctx context.Context) ([]*interfaces.Document, error) {
	entries, err := fs.ReadDir(l.fs, l.root)
	if err != nil {
		return nil, fmt.Errorf("markdown loader list %s: %w", l.root, err)
	}

	var docs []*interfaces.Document
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || path.Ext(entry.Name()) != documentExt {
			continue
		}
		doc, err := l.Load(ctx, strings.TrimSuffix(entry.Name(), documentExt))
		if err != nil {
			if errors.Is(err, ErrDocumentNotFound) {
				continue
			}
			return nil, err
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		di, dj := docs[i].FrontMatter.Date, docs[j].FrontMatter.Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return docs[i].Slug < docs[j].Slug
	})
	return docs, nil
}

func validSlug(slug string) bool {
	if slug == "" || strings.ContainsAny(slug, `/\`) || strings.HasPrefix(slug, ".") {
		return false
	}
	return fs.ValidPath(slug + documentExt)
}
