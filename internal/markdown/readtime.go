package markdown

import (
	"unicode"
)

const (
	cjkCharsPerMinute = 300
	wordsPerMinute    = 200
)

// ReadingMinutes estimates reading time for mixed CJK and Latin text: CJK
// characters are counted individually, everything else by whitespace
// separated words. The result is rounded up and never below one.
func ReadingMinutes(source []byte) int {
	cjk, words := 0, 0
	inWord := false
	for _, r := range string(source) {
		switch {
		case isCJK(r):
			cjk++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}

	// Integer ceil of cjk/300 + words/200 over the common denominator.
	minutes := (cjk*2 + words*3 + 599) / 600
	if minutes < 1 {
		return 1
	}
	return minutes
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
