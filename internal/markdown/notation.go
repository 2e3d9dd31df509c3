package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// codeLine is one source line of a code block plus the decorations the
// transformers attached to it.
type codeLine struct {
	text    string
	origin  int
	classes []string
	words   []string
}

func (l *codeLine) addClass(classes ...string) {
	for _, class := range classes {
		if !containsString(l.classes, class) {
			l.classes = append(l.classes, class)
		}
	}
}

// codeState is the mutable view of a code block handed to each transformer
// in turn.
type codeState struct {
	lines      []*codeLine
	meta       string
	preClasses []string
}

func newCodeState(code, meta string) *codeState {
	raw := strings.Split(code, "\n")
	lines := make([]*codeLine, len(raw))
	for i, text := range raw {
		lines[i] = &codeLine{text: text, origin: i + 1}
	}
	return &codeState{lines: lines, meta: meta}
}

func (s *codeState) addPreClass(class string) {
	if !containsString(s.preClasses, class) {
		s.preClasses = append(s.preClasses, class)
	}
}

type codeTransformer func(*codeState)

var codeTransformers = map[string]codeTransformer{
	TransformerNotationDiff:          notationDiff,
	TransformerNotationHighlight:     notationHighlight,
	TransformerNotationWordHighlight: notationWordHighlight,
	TransformerMetaHighlight:         metaHighlight,
	TransformerLineNumbers:           lineNumbers,
}

// KnownTransformer reports whether name is a registered code transformer.
func KnownTransformer(name string) bool {
	_, ok := codeTransformers[strings.TrimSpace(name)]
	return ok
}

// applyTransformers runs the named transformers in order. Unknown names are
// returned so the caller can log them.
func applyTransformers(state *codeState, names []string) []string {
	var unknown []string
	for _, name := range names {
		fn, ok := codeTransformers[strings.TrimSpace(name)]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		fn(state)
	}
	return unknown
}

// notationPattern matches a trailing "[!code ...]" comment in the common
// line comment syntaxes.
var notationPattern = regexp.MustCompile(`\s*(?://|/\*|<!--|#|--|;|%)\s*\[!code\s+([^\]]+)\]\s*(?:\*/|-->)?\s*$`)

// notation is a parsed "[!code ...]" directive.
type notation struct {
	name  string
	arg   string
	count int
}

func parseNotation(body string) notation {
	body = strings.TrimSpace(body)
	n := notation{count: 1}

	switch {
	case body == "++" || body == "--":
		n.name = body
		return n
	case strings.HasPrefix(body, "word:"):
		n.name = "word"
		rest := strings.TrimPrefix(body, "word:")
		if idx := strings.LastIndex(rest, ":"); idx > 0 {
			if count, err := strconv.Atoi(rest[idx+1:]); err == nil && count > 0 {
				n.count = count
				rest = rest[:idx]
			}
		}
		n.arg = rest
		return n
	}

	name, countText, hasCount := strings.Cut(body, ":")
	n.name = strings.TrimSpace(name)
	if hasCount {
		if count, err := strconv.Atoi(strings.TrimSpace(countText)); err == nil && count > 0 {
			n.count = count
		}
	}
	return n
}

// applyNotation strips every notation accepted by match and hands the
// affected lines to apply. A line holding nothing but the notation is
// removed and the directive applies to the lines that follow it.
func applyNotation(state *codeState, match func(notation) bool, apply func(notation, *codeLine)) bool {
	found := false
	out := make([]*codeLine, 0, len(state.lines))
	type pendingDirective struct {
		n         notation
		remaining int
	}
	var pending []pendingDirective

	for _, line := range state.lines {
		loc := notationPattern.FindStringSubmatchIndex(line.text)
		var directive *notation
		if loc != nil {
			parsed := parseNotation(line.text[loc[2]:loc[3]])
			if match(parsed) {
				directive = &parsed
				line.text = line.text[:loc[0]]
				found = true
			}
		}

		if directive != nil && strings.TrimSpace(line.text) == "" {
			pending = append(pending, pendingDirective{n: *directive, remaining: directive.count})
			continue
		}

		next := pending[:0]
		for _, p := range pending {
			apply(p.n, line)
			p.remaining--
			if p.remaining > 0 {
				next = append(next, p)
			}
		}
		pending = next

		if directive != nil {
			apply(*directive, line)
			if directive.count > 1 {
				pending = append(pending, pendingDirective{n: *directive, remaining: directive.count - 1})
			}
		}
		out = append(out, line)
	}

	state.lines = out
	return found
}

func notationDiff(state *codeState) {
	found := applyNotation(state,
		func(n notation) bool { return n.name == "++" || n.name == "--" },
		func(n notation, line *codeLine) {
			if n.name == "++" {
				line.addClass("diff", "add")
				return
			}
			line.addClass("diff", "remove")
		},
	)
	if found {
		state.addPreClass("has-diff")
	}
}

func notationHighlight(state *codeState) {
	found := applyNotation(state,
		func(n notation) bool { return n.name == "highlight" || n.name == "hl" },
		func(_ notation, line *codeLine) { line.addClass("highlighted") },
	)
	if found {
		state.addPreClass("has-highlighted")
	}
}

func notationWordHighlight(state *codeState) {
	found := applyNotation(state,
		func(n notation) bool { return n.name == "word" && n.arg != "" },
		func(n notation, line *codeLine) {
			if !containsString(line.words, n.arg) {
				line.words = append(line.words, n.arg)
			}
		},
	)
	if found {
		state.addPreClass("has-highlighted-words")
	}
}

func metaHighlight(state *codeState) {
	ranges := parseMetaRanges(state.meta)
	if len(ranges) == 0 {
		return
	}
	for _, line := range state.lines {
		if _, ok := ranges[line.origin]; ok {
			line.addClass("highlighted")
		}
	}
	state.addPreClass("has-highlighted")
}

func lineNumbers(state *codeState) {
	state.addPreClass("line-numbers")
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
