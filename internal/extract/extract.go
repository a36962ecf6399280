// Package extract derives SEO signals from HTML documents.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Signals are the markup-derived fields of a check.
type Signals struct {
	H1          string
	Title       string
	Description string
}

// FromHTML parses body and extracts the first <h1> text, the <title> text, and the content
// of the first <meta name="description">. Missing elements yield empty strings.
func FromHTML(body []byte) (Signals, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Signals{}, fmt.Errorf("parse html: %w", err)
	}
	return fromDocument(doc), nil
}

func fromDocument(doc *goquery.Document) Signals {
	var out Signals
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		out.H1 = strings.TrimSpace(h1.Text())
	}
	if title := doc.Find("title").First(); title.Length() > 0 {
		out.Title = strings.TrimSpace(title.Text())
	}
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, _ := s.Attr("content")
		out.Description = strings.TrimSpace(content)
		return false
	})
	return out
}
