package groq

import (
	"github.com/baalimago/searchchat/internal/text/generic"
)

var Default = Groq{
	Model:       generic.DefaultModel,
	Temperature: 0.0,
	TopP:        1.0,
	URL:         generic.GroqURL,
	ModelsURL:   generic.GroqModelsURL,
}

// Groq is the configuration of the chat model, as found in config.json.
type Groq struct {
	generic.StreamCompleter `json:"-"`
	Model                   string  `json:"model"`
	MaxTokens               *int    `json:"max_tokens"` // Use a pointer to allow null value
	Temperature             float64 `json:"temperature"`
	TopP                    float64 `json:"top_p"`
	URL                     string  `json:"url"`
	// ModelsURL is used to verify the api key. Set to empty to skip verification.
	ModelsURL string `json:"models_url"`
}
