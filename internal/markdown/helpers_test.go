package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":         "hello-world",
		"  Hello,   World!  ": "hello-world",
		"Go 1.24 release":     "go-1-24-release",
		"你好 World":            "你好-world",
		"!!!":                 "",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSluggerFallsBackAndAvoidsCollisions(t *testing.T) {
	s := newSlugger()
	got := []string{s.slug("!!!"), s.slug("Intro 1"), s.slug("Intro"), s.slug("Intro"), s.slug("Intro")}
	want := []string{"heading", "intro-1", "intro", "intro-2", "intro-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitInfo(t *testing.T) {
	lang, file, meta := splitInfo([]byte("ts:src/app.ts {1,3-4}"))
	if lang != "ts" || file != "src/app.ts" || meta != "{1,3-4}" {
		t.Fatalf("unexpected split %q %q %q", lang, file, meta)
	}
	lang, file, meta = splitInfo([]byte("go{2}"))
	if lang != "go" || file != "" || meta != "{2}" {
		t.Fatalf("unexpected split %q %q %q", lang, file, meta)
	}
}

func TestParseMetaRanges(t *testing.T) {
	got := parseMetaRanges("{1,3-4} title=\"x\"")
	for _, n := range []int{1, 3, 4} {
		if _, ok := got[n]; !ok {
			t.Fatalf("expected line %d in %v", n, got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected three lines, got %v", got)
	}
	if len(parseMetaRanges("{5-2}")) != 0 {
		t.Fatal("expected reversed range to be ignored")
	}
}

func TestReadingMinutes(t *testing.T) {
	if got := ReadingMinutes(nil); got != 1 {
		t.Fatalf("expected minimum of 1, got %d", got)
	}
	if got := ReadingMinutes([]byte(strings.Repeat("字", 301))); got != 2 {
		t.Fatalf("expected 2 minutes for 301 CJK characters, got %d", got)
	}
	mixed := strings.Repeat("字", 150) + " " + strings.Repeat("word ", 100)
	if got := ReadingMinutes([]byte(mixed)); got != 1 {
		t.Fatalf("expected 1 minute for mixed text, got %d", got)
	}
}

func TestThemeCSS(t *testing.T) {
	css, err := ThemeCSS("github")
	if err != nil {
		t.Fatalf("ThemeCSS: %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Fatalf("expected chroma selectors, got %q", css)
	}
	if _, err := ThemeCSS("no-such-theme"); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}
