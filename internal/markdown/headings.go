package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

const (
	tocMinLevel    = 2
	fallbackAnchor = "heading"
)

var tocKey = parser.NewContextKey()

// headingTransformer assigns anchor ids to every heading and records the
// table of contents in the parser context.
type headingTransformer struct{}

func (headingTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	slugger := newSlugger()
	var toc []interfaces.TOCEntry

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		label := strings.TrimSpace(plainText(heading, source))
		id := slugger.slug(label)
		heading.SetAttributeString("id", []byte(id))
		prependAnchor(heading, id)

		if heading.Level >= tocMinLevel {
			toc = append(toc, interfaces.TOCEntry{ID: id, Text: label, Level: heading.Level})
		}
		return ast.WalkSkipChildren, nil
	})

	pc.Set(tocKey, toc)
}

func tocFromContext(pc parser.Context) []interfaces.TOCEntry {
	entries, _ := pc.Get(tocKey).([]interfaces.TOCEntry)
	if entries == nil {
		return []interfaces.TOCEntry{}
	}
	return entries
}

func prependAnchor(heading *ast.Heading, id string) {
	anchor := ast.NewLink()
	anchor.Destination = []byte("#" + id)
	anchor.SetAttributeString("class", []byte("heading-anchor"))
	anchor.SetAttributeString("tabindex", []byte("-1"))
	if first := heading.FirstChild(); first != nil {
		heading.InsertBefore(heading, first, anchor)
		return
	}
	heading.AppendChild(heading, anchor)
}

// plainText concatenates the literal text below node, ignoring markup.
func plainText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// slugger produces URL fragment ids. Letters and digits of any script are
// kept (lower-cased), every other run collapses to a single '-', and repeats
// within one document get -1, -2, ... suffixes.
type slugger struct {
	next map[string]int
	used map[string]struct{}
}

func newSlugger() *slugger {
	return &slugger{next: map[string]int{}, used: map[string]struct{}{}}
}

func (s *slugger) slug(label string) string {
	base := Slugify(label)
	if base == "" {
		base = fallbackAnchor
	}
	for n := s.next[base]; ; n++ {
		candidate := base
		if n > 0 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		if _, taken := s.used[candidate]; taken {
			continue
		}
		s.next[base] = n + 1
		s.used[candidate] = struct{}{}
		return candidate
	}
}

// Slugify lower-cases label and collapses runs of anything other than
// letters and digits into single dashes.
func Slugify(label string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingDash = true
	}
	return b.String()
}
