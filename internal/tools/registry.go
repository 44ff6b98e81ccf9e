package tools

import (
	"os"
	"sort"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Registry is a threadsafe storage for LLMTools. One is created per session.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]LLMTool
	debug bool
}

// NewRegistry returns an empty tools registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]LLMTool), debug: misc.Truthy(os.Getenv("DEBUG"))}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (LLMTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Set registers tool under its specification name.
func (r *Registry) Set(t LLMTool) {
	name := t.Specification().Name
	r.mu.Lock()
	if r.debug {
		ancli.Okf("adding tool to registry, name: %v\n", name)
	}
	r.tools[name] = t
	r.mu.Unlock()
}

// All returns a copy of all registered tools keyed by name.
func (r *Registry) All() map[string]LLMTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make(map[string]LLMTool, len(r.tools))
	for k, v := range r.tools {
		cp[k] = v
	}
	return cp
}

// Names of all registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for k := range r.tools {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
