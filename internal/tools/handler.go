package tools

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Config for the lookup tools. Zero values fall back to the public endpoints.
type Config struct {
	Bound         Bound
	SearchURL     string
	ArxivURL      string
	WikipediaURL  string
	WikipediaLang string
	Client        *http.Client
}

const defaultToolTimeout = 20 * time.Second

// Init a registry with the search, arxiv and wikipedia tools.
func Init(conf Config) *Registry {
	if conf.Client == nil {
		conf.Client = &http.Client{Timeout: defaultToolTimeout}
	}
	r := NewRegistry()
	r.Set(NewSearch(conf))
	r.Set(NewArxiv(conf))
	r.Set(NewWikipedia(conf))
	return r
}

// Invoke the named tool, and gather both error and output in the same string.
// Whatever happens, the caller gets text to reason over.
func Invoke(ctx context.Context, r *Registry, name, query string) (out string) {
	t, exists := r.Get(name)
	if !exists {
		return fmt.Sprintf("%v is not a valid tool, try one of [%v].", name, strings.Join(r.Names(), ", "))
	}
	if misc.Truthy(os.Getenv("DEBUG_CALL")) {
		ancli.Noticef("invoke tool: '%v', query: '%v'\n", name, query)
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = toolFailure(name, fmt.Errorf("panic: %v", rec))
		}
	}()
	out, err := t.Call(ctx, query)
	if err != nil {
		return toolFailure(name, err)
	}
	return out
}

func toolFailure(name string, err error) string {
	toolErr := &ToolError{Tool: name, Err: err}
	return "ERROR: " + toolErr.Error()
}
