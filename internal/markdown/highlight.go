package markdown

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/wynotes/go-notes/pkg/interfaces"
)

const (
	defaultLanguageLabel = "text"
	mermaidLanguage      = "mermaid"
	copyLabel            = "Copy"
)

// codeBlockRenderer renders CodeBlock nodes with chroma class-based markup
// and the block decoration (title bar, copy button, line spans).
type codeBlockRenderer struct {
	logger interfaces.Logger
}

func newCodeBlockRenderer(logger interfaces.Logger) renderer.NodeRenderer {
	return &codeBlockRenderer{logger: logger}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block, ok := node.(*CodeBlock)
	if !ok {
		return ast.WalkContinue, nil
	}

	if strings.EqualFold(block.Language, mermaidLanguage) {
		_, _ = w.WriteString(`<pre class="mermaid">`)
		_, _ = w.WriteString(html.EscapeString(block.Code))
		_, _ = w.WriteString("</pre>\n")
		return ast.WalkSkipChildren, nil
	}

	state := newCodeState(block.Code, block.Meta)
	if unknown := applyTransformers(state, block.Transformers); len(unknown) > 0 {
		r.logger.Debug("markdown.transformers.unknown", "names", unknown)
	}

	label := block.Language
	if label == "" {
		label = defaultLanguageLabel
	}

	_, _ = w.WriteString(`<div class="code-block">`)
	writeTitle(w, label, block.Filename)

	preClasses := append([]string{"chroma"}, state.preClasses...)
	_, _ = w.WriteString(`<pre class="`)
	_, _ = w.WriteString(strings.Join(preClasses, " "))
	_, _ = w.WriteString(`" data-language="`)
	_, _ = w.WriteString(html.EscapeString(label))
	if block.Theme != "" {
		_, _ = w.WriteString(`" data-theme="`)
		_, _ = w.WriteString(html.EscapeString(block.Theme))
	}
	_, _ = w.WriteString(`" style="--line-width: `)
	_, _ = w.WriteString(strconv.Itoa(len(strconv.Itoa(len(state.lines)))))
	_, _ = w.WriteString(`ch;"><code>`)

	highlighted := highlightLines(block.Language, state.lines)
	for i, line := range state.lines {
		if i > 0 {
			_ = w.WriteByte('\n')
		}
		classes := append([]string{"line"}, line.classes...)
		_, _ = w.WriteString(`<span class="`)
		_, _ = w.WriteString(strings.Join(classes, " "))
		_, _ = w.WriteString(`" data-line="`)
		_, _ = w.WriteString(strconv.Itoa(i + 1))
		_, _ = w.WriteString(`">`)
		_, _ = w.WriteString(highlighted[i])
		_, _ = w.WriteString(`</span>`)
	}
	_, _ = w.WriteString("</code></pre></div>\n")
	return ast.WalkSkipChildren, nil
}

func writeTitle(w util.BufWriter, label, filename string) {
	_, _ = w.WriteString(`<div class="code-title"`)
	if filename != "" {
		_, _ = w.WriteString(` data-filename="`)
		_, _ = w.WriteString(html.EscapeString(filename))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(`>`)
	if filename != "" {
		_, _ = w.WriteString(`<span class="code-filename">`)
		_, _ = w.WriteString(html.EscapeString(filename))
		_, _ = w.WriteString(`</span>`)
	}
	_, _ = w.WriteString(`<span class="code-language">`)
	_, _ = w.WriteString(html.EscapeString(label))
	_, _ = w.WriteString(`</span><button class="copy-btn" type="button" aria-label="Copy code">`)
	_, _ = w.WriteString(copyLabel)
	_, _ = w.WriteString(`</button></div>`)
}

// highlightLines tokenises the block as a whole so multi-line constructs
// keep their state, then returns one HTML fragment per line.
func highlightLines(language string, lines []*codeLine) []string {
	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.text
	}

	lexer := lexers.Get(language)
	if language == "" || lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	var tokenLines [][]chroma.Token
	if iterator, err := lexer.Tokenise(nil, strings.Join(texts, "\n")); err == nil {
		tokenLines = chroma.SplitTokensIntoLines(iterator.Tokens())
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		var tokens []chroma.Token
		if i < len(tokenLines) {
			tokens = tokenLines[i]
		} else {
			tokens = []chroma.Token{{Type: chroma.Text, Value: line.text}}
		}
		out[i] = renderTokens(tokens, line.words)
	}
	return out
}

func renderTokens(tokens []chroma.Token, words []string) string {
	var b bytes.Buffer
	for _, token := range tokens {
		value := strings.TrimRight(token.Value, "\n")
		if value == "" {
			continue
		}
		class := tokenClass(token.Type)
		if class != "" {
			b.WriteString(`<span class="`)
			b.WriteString(class)
			b.WriteString(`">`)
		}
		writeWithWords(&b, value, words)
		if class != "" {
			b.WriteString(`</span>`)
		}
	}
	return b.String()
}

// writeWithWords escapes value and wraps every occurrence of a highlighted
// word.
func writeWithWords(b *bytes.Buffer, value string, words []string) {
	for value != "" {
		idx, word := firstWord(value, words)
		if idx < 0 {
			b.WriteString(html.EscapeString(value))
			return
		}
		b.WriteString(html.EscapeString(value[:idx]))
		b.WriteString(`<span class="highlighted-word">`)
		b.WriteString(html.EscapeString(word))
		b.WriteString(`</span>`)
		value = value[idx+len(word):]
	}
}

func firstWord(value string, words []string) (int, string) {
	best, bestWord := -1, ""
	for _, word := range words {
		if word == "" {
			continue
		}
		if idx := strings.Index(value, word); idx >= 0 && (best < 0 || idx < best) {
			best, bestWord = idx, word
		}
	}
	return best, bestWord
}

func tokenClass(t chroma.TokenType) string {
	for _, candidate := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[candidate]; ok {
			return class
		}
	}
	return ""
}
