package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Flatten reduces raw page markup to its visible text, so label and token
// scanning never trips over tag attributes. Content that doesn't look like
// HTML is returned as-is
func Flatten(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	// Scripts and styles carry numeric noise
	doc.Find("script, style, noscript").Remove()

	// Collect text nodes with explicit separators, so values in adjacent
	// table cells don't run together into one bogus token
	var sb strings.Builder

	doc.Find("*").Contents().Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) != "#text" {
			return
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}

		sb.WriteString(text)
		sb.WriteByte(' ')
	})

	return sb.String()
}
