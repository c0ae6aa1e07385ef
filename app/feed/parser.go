package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

const (
	atomNamespace = "http://www.w3.org/2005/Atom"

	// NoTitle replaces a missing item title.
	NoTitle = "No title"
)

// strategy extracts at most limit items from a well-formed document.
type strategy interface {
	Name() string
	Extract(doc *document, limit int) ([]Item, error)
}

// Parser normalizes RSS and Atom documents into Items. Strategies are tried
// in order and the first one that yields items wins.
type Parser struct {
	strategies []strategy
}

func NewParser() *Parser {
	return &Parser{
		strategies: []strategy{
			&rssStrategy{parser: &rss.Parser{}},
			&atomStrategy{parser: &atom.Parser{}},
		},
	}
}

// Run returns at most limit items in document order. Items without an
// absolute http(s) link are dropped; a missing title is replaced by NoTitle.
func (p *Parser) Run(data []byte, limit int) ([]Item, error) {
	return p.RunFrom("", data, limit)
}

// RunFrom is Run for a document fetched from address. Relative item links
// are resolved against the channel link, then against address.
func (p *Parser) RunFrom(address string, data []byte, limit int) ([]Item, error) {
	doc, err := inspect(data)
	if err != nil {
		return nil, err
	}
	doc.address = parseBase(address)

	if limit <= 0 {
		return []Item{}, nil
	}

	for _, s := range p.strategies {
		items, err := s.Extract(doc, limit)
		if err != nil {
			// A strategy that does not match the document's dialect is not
			// a feed error; the next one gets its turn.
			continue
		}
		if len(items) > 0 {
			slog.Debug("Feed normalized", "strategy", s.Name(), "items", len(items))
			return items, nil
		}
	}

	return []Item{}, nil
}

type rssStrategy struct {
	parser *rss.Parser
}

func (s *rssStrategy) Name() string {
	return "rss"
}

func (s *rssStrategy) Extract(doc *document, limit int) ([]Item, error) {
	feed, err := s.parser.Parse(bytes.NewReader(doc.raw))
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	nodes := feed.Items
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}

	bases := []*url.URL{parseBase(feed.Link), doc.address}

	items := make([]Item, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}

		link := absoluteLink(node.Link, bases...)
		if link == "" {
			continue
		}

		items = append(items, Item{
			Title:       normalizeTitle(node.Title),
			Link:        link,
			Description: firstNonEmpty(node.Description, node.Content),
		})
	}

	return items, nil
}

type atomStrategy struct {
	parser *atom.Parser
}

func (s *atomStrategy) Name() string {
	return "atom"
}

func (s *atomStrategy) Extract(doc *document, limit int) ([]Item, error) {
	source := doc.raw
	if !doc.isAtomFeed() {
		if len(doc.atomEntries) == 0 {
			return nil, nil
		}
		source = doc.atomEntries
	}

	feed, err := s.parser.Parse(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("atom: %w", err)
	}

	nodes := feed.Entries
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}

	bases := []*url.URL{parseBase(entryLink(feed.Links)), doc.address}

	items := make([]Item, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}

		link := entryLink(node.Links, bases...)
		if link == "" {
			continue
		}

		description := node.Summary
		if description == "" && node.Content != nil {
			description = node.Content.Value
		}

		items = append(items, Item{
			Title:       normalizeTitle(node.Title),
			Link:        link,
			Description: description,
		})
	}

	return items, nil
}

// entryLink picks the alternate HTML link of an entry, falling back to the
// first link that resolves to an absolute URL.
func entryLink(links []*atom.Link, bases ...*url.URL) string {
	var fallback string
	for _, l := range links {
		if l == nil {
			continue
		}
		href := absoluteLink(l.Href, bases...)
		if href == "" {
			continue
		}
		if fallback == "" {
			fallback = href
		}

		rel := strings.ToLower(l.Rel)
		linkType := strings.ToLower(l.Type)
		if (rel == "" || rel == "alternate") && (linkType == "" || linkType == "text/html") {
			return href
		}
	}
	return fallback
}

// absoluteLink returns raw as an absolute http(s) URL, resolving a relative
// reference against the first usable base, or "" when that is impossible.
func absoluteLink(raw string, bases ...*url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		if !isWebURL(u) {
			return ""
		}
		return raw
	}

	for _, base := range bases {
		if isWebURL(base) {
			return base.ResolveReference(u).String()
		}
	}
	return ""
}

func parseBase(raw string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !isWebURL(u) {
		return nil
	}
	return u
}

func isWebURL(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(norm.NFC.String(title))
	if title == "" {
		return NoTitle
	}
	return title
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// document is a feed that passed the well-formedness check.
type document struct {
	raw     []byte
	root    xml.Name
	address *url.URL

	// atomEntries wraps Atom entries found under a non-Atom root into a
	// standalone Atom feed.
	atomEntries []byte
}

func (d *document) isAtomFeed() bool {
	return d.root.Space == atomNamespace && d.root.Local == "feed"
}

// inspect walks the whole document once. Any syntax error, including an
// unclosed element, is reported as ErrMalformedFeed.
func inspect(data []byte) (*document, error) {
	doc := &document{raw: data}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	var entries bytes.Buffer
	encoder := xml.NewEncoder(&entries)
	entryCount := 0

	depth := 0
	captureDepth := 0

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				doc.root = t.Name
			}

			if captureDepth == 0 && depth > 1 && !doc.isAtomFeed() &&
				t.Name.Space == atomNamespace && t.Name.Local == "entry" {
				captureDepth = depth
				entryCount++
			}

			if captureDepth > 0 {
				t.Attr = dropNamespaceDecls(t.Attr)
				if err := encoder.EncodeToken(t); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
				}
			}

		case xml.EndElement:
			if captureDepth > 0 {
				if err := encoder.EncodeToken(t); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
				}
				if depth == captureDepth {
					captureDepth = 0
				}
			}
			depth--

		case xml.CharData:
			if captureDepth > 0 {
				if err := encoder.EncodeToken(t); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
				}
			}
		}
	}

	if doc.root.Local == "" {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedFeed)
	}

	if entryCount > 0 {
		if err := encoder.Flush(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
		}

		var wrapped bytes.Buffer
		wrapped.WriteString(`<feed xmlns="` + atomNamespace + `">`)
		wrapped.Write(entries.Bytes())
		wrapped.WriteString(`</feed>`)
		doc.atomEntries = wrapped.Bytes()
	}

	return doc, nil
}

// dropNamespaceDecls removes xmlns attributes; the encoder re-declares the
// namespaces it needs on every element.
func dropNamespaceDecls(attrs []xml.Attr) []xml.Attr {
	kept := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
