package generic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/searchchat/internal/models"
)

var dataPrefix = []byte("data: ")

// StreamCompletions taking the messages as prompt conversation. Returns the messages from the chat model.
func (s *StreamCompleter) StreamCompletions(ctx context.Context, chat models.Chat) (chan models.CompletionEvent, error) {
	s.limiter.WaitIfNeeded(ctx)
	req, err := s.createRequest(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %v, body: %v", res.Status, string(body))
	}
	if err := s.limiter.UpdateFromHeaders(res.Header); err != nil && s.debug {
		ancli.PrintWarn(fmt.Sprintf("failed to update rate limits: %v\n", err))
	}
	return s.handleStreamResponse(ctx, res), nil
}

func (s *StreamCompleter) createRequest(ctx context.Context, chat models.Chat) (*http.Request, error) {
	msgs := make([]message, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		msgs = append(msgs, message{Role: m.Role, Content: m.Content})
	}
	reqData := req{
		Model:          s.Model,
		MaxTokens:      s.MaxTokens,
		Temperature:    s.Temperature,
		TopP:           s.TopP,
		ResponseFormat: responseFormat{Type: "text"},
		Messages:       msgs,
		Stream:         true,
		Stop:           chat.Stop,
	}
	if s.debug {
		ancli.PrintOK(fmt.Sprintf("generic streamcompleter request: %v\n", debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", s.apiKey))
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Connection", "keep-alive")
	return req, nil
}

// handleStreamResponse emits events until a StopEvent or an error has been
// sent, or the context is cancelled. The channel is always closed.
func (s *StreamCompleter) handleStreamResponse(ctx context.Context, res *http.Response) chan models.CompletionEvent {
	outChan := make(chan models.CompletionEvent)
	send := func(ev models.CompletionEvent) bool {
		select {
		case outChan <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		br := bufio.NewReader(res.Body)
		defer func() {
			res.Body.Close()
			close(outChan)
		}()
		for {
			token, err := br.ReadBytes('\n')
			if len(bytes.TrimSpace(token)) > 0 {
				ev := s.handleStreamChunk(token)
				if _, isNoop := ev.(models.NoopEvent); !isNoop {
					if !send(ev) {
						return
					}
				}
				switch ev.(type) {
				case models.StopEvent, error:
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					// Some servers close the stream without [DONE]
					send(models.StopEvent{})
					return
				}
				send(fmt.Errorf("failed to read line: %w", err))
				return
			}
		}
	}()

	return outChan
}

func (s *StreamCompleter) handleStreamChunk(token []byte) models.CompletionEvent {
	token = bytes.TrimSpace(token)
	if !bytes.HasPrefix(token, dataPrefix) {
		// Comments, event names and keep-alives
		return models.NoopEvent{}
	}
	token = bytes.TrimSpace(bytes.TrimPrefix(token, dataPrefix))
	if string(token) == "[DONE]" {
		return models.StopEvent{}
	}

	if s.debug {
		ancli.PrintOK(fmt.Sprintf("token: %+v\n", string(token)))
	}
	var chunk chatCompletionChunk
	err := json.Unmarshal(token, &chunk)
	if err != nil {
		if misc.Truthy(os.Getenv("DEBUG")) {
			// Expect some failing unmarshalls, which seems to be fine
			ancli.PrintWarn(fmt.Sprintf("failed to unmarshal token: %v, err: %v\n", token, err))
		}
		return models.NoopEvent{}
	}
	if chunk.Error != nil {
		return fmt.Errorf("stream error: %v (%v)", chunk.Error.Message, chunk.Error.Type)
	}
	if len(chunk.Choices) == 0 {
		return models.NoopEvent{}
	}

	// Only one completion is requested, so the first choice is the one
	content := chunk.Choices[0].Delta.Content
	if content == "" {
		return models.NoopEvent{}
	}
	return content
}
