package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownTheme is returned by ThemeCSS for unregistered chroma styles.
var ErrUnknownTheme = errors.New("markdown: unknown theme")

// Themes lists the chroma style names ThemeCSS accepts.
func Themes() []string {
	return styles.Names()
}

// ThemeCSS returns the stylesheet matching the class-based markup emitted
// for code blocks.
func ThemeCSS(theme string) (string, error) {
	name := strings.TrimSpace(theme)
	if name == "" {
		name = DefaultTheme
	}
	known := false
	for _, candidate := range styles.Names() {
		if candidate == name {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}

	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return "", fmt.Errorf("markdown: write theme css: %w", err)
	}
	return buf.String(), nil
}
