package preinput

import (
	"regexp"
	"strings"
)

var (
	newlineRe   = regexp.MustCompile(`[\r\n]`)
	backslashRe = regexp.MustCompile(`\\([^\w])`)
)

// CleanText normalizes page-scraped text: newlines become spaces, escaped
// punctuation is unescaped, and when the first sentence reappears later in
// the text (a scraper artifact where the lead paragraph is duplicated),
// only the last occurrence onward is kept.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = unescape(text)

	first := text
	if i := strings.Index(text, "."); i >= 0 {
		first = text[:i+1]
	} else {
		first = strings.TrimSpace(text)
	}

	trimmed := strings.TrimRight(text, " \t")
	if last := strings.LastIndex(trimmed, first); last > 0 {
		return strings.TrimSpace(text[last:])
	}
	return strings.TrimSpace(text)
}

// CleanBlurb normalizes blurb text without the duplicate-lead trimming,
// which only affects full page scrapes.
func CleanBlurb(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(unescape(text))
}

func unescape(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer(`\'`, `'`, `\"`, `"`, "\\`", "`").Replace(text)
	return backslashRe.ReplaceAllString(text, "$1")
}

// wordCount counts whitespace-separated tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
