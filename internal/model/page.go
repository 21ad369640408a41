package model

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PageDocument is the parsed representation of one fetched product page.
// It is produced once per fetch and consumed read-only by both the price
// extractor and the availability classifier within the same check.
//
// Design decision: We parse with golang.org/x/net/html and wrap the tree
// in a goquery document rather than querying raw bytes because:
//  1. Retail markup is routinely malformed; the html package tolerates it
//  2. goquery gives us CSS selectors, matching the locator lists the
//     original selector tables were written in
//  3. A single parse serves both extractors, keeping them pure functions
//     of the same tree
type PageDocument struct {
	// URL is the page that was fetched.
	URL string

	// StatusCode is the HTTP status the page was served with.
	StatusCode int

	// FetchedAt is when the body was retrieved.
	FetchedAt time.Time

	root *html.Node
	doc  *goquery.Document

	// textOnce guards the lazily built visible-text snapshot.
	// The cache is internal; the exported API stays read-only.
	textOnce sync.Once
	text     string
}

// ParsePage parses a fetched body into a PageDocument.
// The body is never mutated; callers may discard it after parsing.
func ParsePage(pageURL string, statusCode int, fetchedAt time.Time, body []byte) (*PageDocument, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return &PageDocument{
		URL:        pageURL,
		StatusCode: statusCode,
		FetchedAt:  fetchedAt,
		root:       root,
		doc:        goquery.NewDocumentFromNode(root),
	}, nil
}

// Find returns the elements matching the given CSS selector.
func (p *PageDocument) Find(selector string) *goquery.Selection {
	return p.doc.Find(selector)
}

// VisibleText returns the page's visible text content: every text node
// except those inside script, style, noscript, and template elements,
// joined with single spaces. It is the input for heuristic extraction
// when no structural locator matches.
func (p *PageDocument) VisibleText() string {
	p.textOnce.Do(func() {
		var sb strings.Builder
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			if n.Type == html.ElementNode {
				switch n.Data {
				case "script", "style", "noscript", "template":
					return
				}
			}
			if n.Type == html.TextNode {
				for _, word := range strings.Fields(n.Data) {
					if sb.Len() > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(word)
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		walk(p.root)
		p.text = sb.String()
	})
	return p.text
}
