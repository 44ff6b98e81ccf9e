package tools

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
)

const (
	defaultWikipediaLang = "en"
	noWikipediaResult    = "No good Wikipedia Search Result was found"
	wikipediaMaxQuery    = 300
)

var (
	wikiTitlesQuery  = mustParseJQ(`[.query.search[]?.title]`)
	wikiExtractQuery = mustParseJQ(`.query.pages[]? | select(.missing | not) | {title: .title, extract: (.extract // "")}`)
)

func mustParseJQ(expr string) *gojq.Query {
	q, err := gojq.Parse(expr)
	if err != nil {
		panic(fmt.Sprintf("invalid jq expression %q: %v", expr, err))
	}
	return q
}

// Wikipedia searches page titles and returns the intro of each matched page.
type Wikipedia struct {
	baseURL string
	bound   Bound
	client  *http.Client
}

func NewWikipedia(conf Config) *Wikipedia {
	lang := cmp.Or(conf.WikipediaLang, defaultWikipediaLang)
	return &Wikipedia{
		baseURL: cmp.Or(conf.WikipediaURL, fmt.Sprintf("https://%v.wikipedia.org/w/api.php", lang)),
		bound:   conf.Bound,
		client:  cmp.Or(conf.Client, http.DefaultClient),
	}
}

func (w *Wikipedia) Specification() Specification {
	return Specification{
		Name:        "wikipedia",
		Description: "A wrapper around Wikipedia. Useful for when you need to answer general questions about people, places, companies, facts, historical events, or other subjects. Input should be a search query.",
	}
}

func (w *Wikipedia) Call(ctx context.Context, query string) (string, error) {
	q := []rune(query)
	if len(q) > wikipediaMaxQuery {
		q = q[:wikipediaMaxQuery]
	}
	titles, err := w.searchTitles(ctx, string(q))
	if err != nil {
		return "", err
	}
	if len(titles) == 0 {
		return noWikipediaResult, nil
	}
	pages, err := w.extracts(ctx, titles)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return noWikipediaResult, nil
	}
	return w.bound.Apply(strings.Join(pages, "\n\n")), nil
}

func (w *Wikipedia) searchTitles(ctx context.Context, query string) ([]string, error) {
	v, err := w.get(ctx, url.Values{
		"action":        {"query"},
		"list":          {"search"},
		"srsearch":      {query},
		"srlimit":       {strconv.Itoa(w.bound.results())},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return nil, err
	}
	var titles []string
	iter := wikiTitlesQuery.Run(v)
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := res.(error); isErr {
			return nil, fmt.Errorf("failed to extract titles: %w", err)
		}
		arr, _ := res.([]any)
		for _, t := range arr {
			if s, isStr := t.(string); isStr && s != "" && len(titles) < w.bound.results() {
				titles = append(titles, s)
			}
		}
	}
	return titles, nil
}

func (w *Wikipedia) extracts(ctx context.Context, titles []string) ([]string, error) {
	v, err := w.get(ctx, url.Values{
		"action":        {"query"},
		"prop":          {"extracts"},
		"exintro":       {"1"},
		"explaintext":   {"1"},
		"redirects":     {"1"},
		"titles":        {strings.Join(titles, "|")},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]string)
	iter := wikiExtractQuery.Run(v)
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := res.(error); isErr {
			return nil, fmt.Errorf("failed to extract pages: %w", err)
		}
		m, _ := res.(map[string]any)
		title, _ := m["title"].(string)
		extract, _ := m["extract"].(string)
		if title == "" || strings.TrimSpace(extract) == "" {
			continue
		}
		byTitle[title] = fmt.Sprintf("Page: %v\nSummary: %v", title, strings.TrimSpace(extract))
	}

	// Keep search ranking, pages come back in arbitrary order. Redirected
	// titles are not in the ranking, they are appended after.
	pages := make([]string, 0, len(byTitle))
	for _, t := range titles {
		if p, ok := byTitle[t]; ok {
			pages = append(pages, p)
			delete(byTitle, t)
		}
	}
	rest := make([]string, 0, len(byTitle))
	for _, p := range byTitle {
		rest = append(rest, p)
	}
	sort.Strings(rest)
	return append(pages, rest...), nil
}

func (w *Wikipedia) get(ctx context.Context, params url.Values) (any, error) {
	body, err := fetch(ctx, w.client, w.baseURL, params)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode wikipedia response: %w", err)
	}
	return v, nil
}
