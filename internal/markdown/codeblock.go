package markdown

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindCodeBlock identifies prepared fenced code blocks.
var KindCodeBlock = ast.NewNodeKind("NotesCodeBlock")

// CodeBlock replaces ast.FencedCodeBlock once the info string has been
// split and the per-call options resolved.
type CodeBlock struct {
	ast.BaseBlock

	Language     string
	Filename     string
	Meta         string
	Code         string
	Theme        string
	Transformers []string
}

func (n *CodeBlock) Kind() ast.NodeKind {
	return KindCodeBlock
}

func (n *CodeBlock) IsRaw() bool {
	return true
}

func (n *CodeBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Language": n.Language,
		"Filename": n.Filename,
		"Meta":     n.Meta,
	}, nil)
}

// codeBlockTransformer swaps every fenced block for a CodeBlock carrying the
// render options from the parser context.
type codeBlockTransformer struct{}

func (codeBlockTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	opts := optionsFromContext(pc)

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if fence, ok := node.(*ast.FencedCodeBlock); ok {
				fences = append(fences, fence)
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})

	for _, fence := range fences {
		block := &CodeBlock{
			Code:         fenceCode(fence, source),
			Theme:        opts.Theme,
			Transformers: opts.Transformers,
		}
		var info []byte
		if fence.Info != nil {
			info = fence.Info.Segment.Value(source)
		}
		block.Language, block.Filename, block.Meta = splitInfo(info)
		parent := fence.Parent()
		if parent == nil {
			continue
		}
		parent.ReplaceChild(parent, fence, block)
	}
}

func fenceCode(fence *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// splitInfo parses a fence info string such as "ts:app.ts {1,3-4}" into its
// language, filename and meta parts.
func splitInfo(info []byte) (language, filename, meta string) {
	trimmed := strings.TrimSpace(string(info))
	if trimmed == "" {
		return "", "", ""
	}
	head := trimmed
	if idx := strings.IndexAny(trimmed, " \t{"); idx >= 0 {
		head = trimmed[:idx]
		meta = strings.TrimSpace(trimmed[idx:])
	}
	language = head
	if idx := strings.Index(head, ":"); idx >= 0 {
		language = head[:idx]
		filename = head[idx+1:]
	}
	return strings.TrimSpace(language), strings.TrimSpace(filename), meta
}

const maxMetaSpan = 10000

var metaRangePattern = regexp.MustCompile(`\{([\d,\s-]+)\}`)

// parseMetaRanges returns the 1-based line numbers named by a "{1,3-4}" meta
// block. Malformed ranges are skipped.
func parseMetaRanges(meta string) map[int]struct{} {
	lines := map[int]struct{}{}
	for _, match := range metaRangePattern.FindAllStringSubmatch(meta, -1) {
		for _, part := range strings.Split(match[1], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, isRange := strings.Cut(part, "-")
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil || start < 1 {
				continue
			}
			end := start
			if isRange {
				end, err = strconv.Atoi(strings.TrimSpace(hi))
				if err != nil || end < start || end-start > maxMetaSpan {
					continue
				}
			}
			for n := start; n <= end; n++ {
				lines[n] = struct{}{}
			}
		}
	}
	return lines
}
