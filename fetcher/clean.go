package fetcher

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// tagRE strips tag markup in the last-resort cleaning path.
var tagRE = regexp.MustCompile(`<[^>]+>`)

// CleanHTML reduces an HTML document to its readable text: script, style and
// other non-content elements are dropped, tags are stripped, and whitespace
// runs collapse to single spaces.
func CleanHTML(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return fallbackClean(rawHTML)
	}

	doc.Find("script, style, noscript, meta, link, iframe").Remove()

	text := doc.Text()
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// fallbackClean strips markup with a regex when the document will not parse.
func fallbackClean(rawHTML string) string {
	text := tagRE.ReplaceAllString(rawHTML, " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// ExtractTitle returns the <title> content from raw HTML bytes, or "" when
// the document has none.
func ExtractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
