package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ka2n/exo/log"
)

// Text extracts the visible text of an HTML document
type Text struct{}

// Success strips scripts and styles and returns the remaining text with
// whitespace collapsed per line. Input that cannot be parsed is returned as is.
func (Text) Success(body string) Output {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		log.Debug("Failed to parse HTML, passing through", "error", err)
		return Output{Text: body}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template, head").Remove()

	return Output{
		Text:  collapseWhitespace(doc.Text()),
		Title: title,
	}
}

// Failure renders err as a human readable message
func (Text) Failure(err error) Output {
	return errorOutput(err)
}

// collapseWhitespace trims every line, squeezes runs of spaces and drops
// consecutive blank lines
func collapseWhitespace(s string) string {
	var b strings.Builder
	blank := true
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				b.WriteString("\n")
			}
			blank = true
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
		blank = false
	}
	return strings.TrimRight(b.String(), "\n")
}
