package feed

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContentExtractor turns the HTML found in feed descriptions into plain text.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	if !strings.Contains(html, "<") && !strings.Contains(html, "&") {
		return collapseSpaces(html), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe").Remove()

	return collapseSpaces(doc.Text()), nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
