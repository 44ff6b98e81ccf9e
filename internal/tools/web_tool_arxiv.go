package tools

import (
	"cmp"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultArxivURL    = "http://export.arxiv.org/api/query"
	noArxivResult      = "No good Arxiv Result was found"
	arxivMaxQueryChars = 300
)

var arxivIdentifier = regexp.MustCompile(`^(\d{2}(0[1-9]|1[0-2])\.\d{4,5}(v\d+)?|\d{7}.*)$`)

// Arxiv looks up papers in the arXiv export api.
type Arxiv struct {
	baseURL string
	bound   Bound
	client  *http.Client
}

func NewArxiv(conf Config) *Arxiv {
	return &Arxiv{
		baseURL: cmp.Or(conf.ArxivURL, defaultArxivURL),
		bound:   conf.Bound,
		client:  cmp.Or(conf.Client, http.DefaultClient),
	}
}

func (a *Arxiv) Specification() Specification {
	return Specification{
		Name:        "arxiv",
		Description: "A wrapper around Arxiv.org. Useful for when you need to answer questions about Physics, Mathematics, Computer Science, Quantitative Biology, Quantitative Finance, Statistics, Electrical Engineering, and Economics from scientific articles on arxiv.org. Input should be a search query.",
	}
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Published string `xml:"published"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

func (a *Arxiv) params(query string) url.Values {
	q := []rune(query)
	if len(q) > arxivMaxQueryChars {
		q = q[:arxivMaxQueryChars]
	}
	query = string(q)
	params := url.Values{"max_results": {strconv.Itoa(a.bound.results())}}
	if isArxivIdentifierList(query) {
		params.Set("id_list", strings.Join(strings.Fields(query), ","))
	} else {
		params.Set("search_query", query)
	}
	return params
}

func isArxivIdentifierList(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !arxivIdentifier.MatchString(f) {
			return false
		}
	}
	return true
}

func (a *Arxiv) Call(ctx context.Context, query string) (string, error) {
	body, err := fetch(ctx, a.client, a.baseURL, a.params(query))
	if err != nil {
		return "", err
	}
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", fmt.Errorf("failed to decode arxiv feed: %w", err)
	}

	docs := make([]string, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if strings.Contains(e.ID, "api/errors") {
			return "", errors.New("arxiv: " + squash(e.Summary))
		}
		docs = append(docs, formatArxivEntry(e))
		if len(docs) >= a.bound.results() {
			break
		}
	}
	if len(docs) == 0 {
		return noArxivResult, nil
	}
	return a.bound.Apply(strings.Join(docs, "\n\n")), nil
}

func formatArxivEntry(e arxivEntry) string {
	published := e.Published
	if len(published) >= len("2006-01-02") {
		published = published[:len("2006-01-02")]
	}
	authors := make([]string, 0, len(e.Authors))
	for _, au := range e.Authors {
		authors = append(authors, squash(au.Name))
	}
	return fmt.Sprintf("Published: %v\nTitle: %v\nAuthors: %v\nSummary: %v",
		published, squash(e.Title), strings.Join(authors, ", "), squash(e.Summary))
}

// squash collapses all whitespace runs, the feed wraps titles and summaries.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
