package groq

import (
	"context"
	"fmt"
)

func (g *Groq) Setup(ctx context.Context, apiKey string) error {
	g.StreamCompleter.Model = g.Model
	g.StreamCompleter.MaxTokens = g.MaxTokens
	g.StreamCompleter.Temperature = &g.Temperature
	g.StreamCompleter.TopP = &g.TopP
	g.StreamCompleter.URL = g.URL
	g.StreamCompleter.ModelsURL = g.ModelsURL
	err := g.StreamCompleter.Setup(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("failed to setup stream completer: %w", err)
	}
	return nil
}
