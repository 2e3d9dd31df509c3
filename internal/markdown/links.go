package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	attrTarget = []byte("target")
	attrRel    = []byte("rel")
	valBlank   = []byte("_blank")
	valRel     = []byte("noopener noreferrer")
)

// linkTransformer opens absolute links in a new tab without handing the
// opener to the destination.
type linkTransformer struct{}

func (linkTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Link:
			if isExternal(n.Destination) {
				markExternal(n)
			}
		case *ast.AutoLink:
			if n.AutoLinkType == ast.AutoLinkURL && isExternal(n.URL(source)) {
				markExternal(n)
			}
		}
		return ast.WalkContinue, nil
	})
}

func markExternal(node ast.Node) {
	node.SetAttribute(attrTarget, valBlank)
	node.SetAttribute(attrRel, valRel)
}

// isExternal reports whether dest is an absolute http(s) or protocol
// relative URL.
func isExternal(dest []byte) bool {
	lower := bytes.ToLower(bytes.TrimSpace(dest))
	return bytes.HasPrefix(lower, []byte("http://")) ||
		bytes.HasPrefix(lower, []byte("https://")) ||
		bytes.HasPrefix(lower, []byte("//"))
}
