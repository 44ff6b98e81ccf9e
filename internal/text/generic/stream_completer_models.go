package generic

import (
	"net/http"
)

const (
	GroqURL       = "https://api.groq.com/openai/v1/chat/completions"
	GroqModelsURL = "https://api.groq.com/openai/v1/models"
	DefaultModel  = "llama3-8b-8192"
)

// StreamCompleter follows the OpenAI chat completions model, which Groq serves
// as well.
type StreamCompleter struct {
	Model       string
	MaxTokens   *int
	Temperature *float64
	TopP        *float64
	URL         string
	// ModelsURL is queried by Setup to verify the api key. Empty skips verification.
	ModelsURL string
	client    *http.Client
	apiKey    string
	limiter   RateLimiter
	debug     bool
}

type chatCompletionChunk struct {
	Id                string      `json:"id"`
	Object            string      `json:"object"`
	Created           int         `json:"created"`
	Model             string      `json:"model"`
	SystemFingerprint string      `json:"system_fingerprint"`
	Choices           []Choice    `json:"choices"`
	Error             *chunkError `json:"error,omitempty"`
}

type chunkError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type Choice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type req struct {
	Model          string         `json:"model,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
	Messages       []message      `json:"messages,omitempty"`
	Stream         bool           `json:"stream,omitempty"`
	MaxTokens      *int           `json:"max_tokens,omitempty"`
	Temperature    *float64       `json:"temperature,omitempty"`
	TopP           *float64       `json:"top_p,omitempty"`
	Stop           []string       `json:"stop,omitempty"`
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}
