package tools

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Specification describes a tool to the agent. Name is what the agent writes
// after 'Action:', Description is what it reads to decide when to use it.
type Specification struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LLMTool maps a free-text query to a bounded text result.
type LLMTool interface {
	// Call the tool with the given query. Returns output from the tool or an error
	// if the lookup failed, such as a non 2xx response or an unreachable source.
	Call(ctx context.Context, query string) (string, error)

	// Specification of the tool, later on used by the agent when describing
	// its capabilities to the model
	Specification() Specification
}

// Bound limits how much a tool may return.
type Bound struct {
	MaxResults int `json:"max-results"`
	MaxChars   int `json:"max-chars"`
}

// DefaultBound keeps observations small so that the agent prompt stays small.
var DefaultBound = Bound{MaxResults: 1, MaxChars: 250}

func (b Bound) results() int {
	if b.MaxResults <= 0 {
		return DefaultBound.MaxResults
	}
	return b.MaxResults
}

// Apply clips s to MaxChars runes. A non-positive MaxChars disables clipping.
func (b Bound) Apply(s string) string {
	if b.MaxChars <= 0 || utf8.RuneCountInString(s) <= b.MaxChars {
		return s
	}
	return string([]rune(s)[:b.MaxChars])
}

// ToolError is returned by Invoke-internals whenever a tool fails. It's never
// propagated past Invoke, only its text is.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("failed to run tool: %v, error: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
