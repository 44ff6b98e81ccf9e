package models

import (
	"context"
	"fmt"
)

// CompletionEvent is anything a StreamCompleter pushes on its channel. In practice
// one of: string (a token), error, StopEvent or NoopEvent.
type CompletionEvent any

// NoopEvent is emitted for stream chunks which carry nothing of interest, such
// as keep-alives or role-only deltas.
type NoopEvent struct{}

// StopEvent marks the end of a completion.
type StopEvent struct{}

// StreamCompleter streams completions from a chat model.
type StreamCompleter interface {
	// StreamCompletions for the given chat. The returned channel is closed once the
	// completion is done, or the context is cancelled.
	StreamCompletions(ctx context.Context, chat Chat) (chan CompletionEvent, error)
}

// Chat is the wire-level prompt sent to the chat model. It is not the user facing
// transcript, see package conversation for that.
type Chat struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	// Stop sequences, the model halts generation when any of these are produced.
	Stop []string `json:"-"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LastOfRole returns the last message of the given role, along with its index.
func (c *Chat) LastOfRole(role string) (Message, int, error) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		msg := c.Messages[i]
		if msg.Role == role {
			return msg, i, nil
		}
	}
	return Message{}, -1, fmt.Errorf("failed to find any %v message", role)
}
