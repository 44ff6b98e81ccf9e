package tools

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	defaultSearchURL = "https://html.duckduckgo.com/html/"
	noSearchResult   = "No good DuckDuckGo Search Result was found"
)

// Search queries the DuckDuckGo html endpoint and returns result snippets.
type Search struct {
	baseURL string
	bound   Bound
	client  *http.Client
}

func NewSearch(conf Config) *Search {
	return &Search{
		baseURL: cmp.Or(conf.SearchURL, defaultSearchURL),
		bound:   conf.Bound,
		client:  cmp.Or(conf.Client, http.DefaultClient),
	}
}

func (s *Search) Specification() Specification {
	return Specification{
		Name:        "Search",
		Description: "A wrapper around DuckDuckGo Search. Useful for when you need to answer questions about current events. Input should be a search query.",
	}
}

func (s *Search) Call(ctx context.Context, query string) (string, error) {
	body, err := fetch(ctx, s.client, s.baseURL, url.Values{"q": {query}})
	if err != nil {
		return "", err
	}
	snippets, err := parseSearchSnippets(bytes.NewReader(body), s.bound.results())
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return noSearchResult, nil
	}
	return s.bound.Apply(strings.Join(snippets, " ")), nil
}

// parseSearchSnippets walks the result page and collects the text of every
// element with the result__snippet class, stopping at limit.
func parseSearchSnippets(r *bytes.Reader, limit int) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}
	var snippets []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(snippets) >= limit {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result__snippet") {
			if txt := nodeText(n); txt != "" {
				snippets = append(snippets, txt)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return snippets, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates all text below n with whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteRune(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
