package analyzer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tagStartRe decides whether a body is worth parsing as HTML at all: the
// parser would happily wrap plain text or JSON in html/head/body elements and
// report tags that were never there.
var tagStartRe = regexp.MustCompile(`<\s*[A-Za-z!/]`)

// urlTokenRe matches absolute and protocol-relative URL tokens. Canary
// occurrences inside these spans are not counted as reflections.
var urlTokenRe = regexp.MustCompile(`(?:https?:)?//[^\s'"<>]+`)

// CountHTMLTags returns the number of element tags in an HTML document, or 0
// when the content does not look like HTML or fails to parse.
func CountHTMLTags(body string) int {
	if !tagStartRe.MatchString(body) {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 0
	}
	return doc.Find("*").Length()
}

// countReflections counts occurrences of value in text. With excludeURLs set,
// occurrences inside URL tokens are skipped.
func countReflections(value, text string, excludeURLs bool) int {
	if value == "" {
		return 0
	}

	var urlSpans [][]int
	if excludeURLs {
		urlSpans = urlTokenRe.FindAllStringIndex(text, -1)
	}

	count := 0
	for offset := 0; ; {
		idx := strings.Index(text[offset:], value)
		if idx < 0 {
			break
		}
		start := offset + idx
		if !insideSpan(start, urlSpans) {
			count++
		}
		offset = start + len(value)
	}
	return count
}

func insideSpan(pos int, spans [][]int) bool {
	for _, span := range spans {
		if pos >= span[0] && pos < span[1] {
			return true
		}
	}
	return false
}
