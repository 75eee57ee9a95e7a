package render

import (
	html2md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ka2n/exo/log"
	"github.com/mackee/go-readability"
)

// Markdown converts HTML into markdown. It tries readability first, then a
// whole-document conversion, and finally falls back to the raw body.
type Markdown struct{}

// Success converts body to markdown
func (Markdown) Success(body string) Output {
	article, err := readability.Extract(body, readability.DefaultOptions())
	if err == nil && article.Root != nil {
		return Output{
			Text:  readability.ToMarkdown(article.Root),
			Title: article.Title,
		}
	}
	if err != nil {
		log.Debug("Readability extraction failed", "error", err)
	}

	// If readability fails, use html2md as a fallback
	converter := html2md.NewConverter("", true, &html2md.Options{})
	md, err := converter.ConvertString(body)
	if err != nil {
		log.Debug("Markdown conversion failed, passing through", "error", err)
		return Output{Text: body}
	}
	return Output{Text: md}
}

// Failure renders err as a human readable message
func (Markdown) Failure(err error) Output {
	return errorOutput(err)
}
