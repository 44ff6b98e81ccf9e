package vendors

import (
	"context"
	"strings"
	"sync"

	"github.com/baalimago/searchchat/internal/models"
)

// Mock is a StreamCompleter that streams scripted responses, one per call.
// Once the script runs out, the last response is repeated. Without a script
// the last user message is echoed.
type Mock struct {
	Responses []string
	// Err, if set, is returned by every call.
	Err error

	mu    sync.Mutex
	chats []models.Chat
}

func (m *Mock) Setup(ctx context.Context, apiKey string) error {
	return nil
}

func (m *Mock) StreamCompletions(ctx context.Context, chat models.Chat) (chan models.CompletionEvent, error) {
	m.mu.Lock()
	call := len(m.chats)
	m.chats = append(m.chats, chat)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var resp string
	switch {
	case len(m.Responses) == 0:
		uMsg, _, _ := chat.LastOfRole("user")
		resp = uMsg.Content
	case call < len(m.Responses):
		resp = m.Responses[call]
	default:
		resp = m.Responses[len(m.Responses)-1]
	}

	ch := make(chan models.CompletionEvent)
	go func() {
		defer close(ch)
		for _, tok := range strings.SplitAfter(resp, " ") {
			select {
			case ch <- tok:
			case <-ctx.Done():
				return
			}
		}
		select {
		case ch <- models.StopEvent{}:
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

// Chats returns every chat the mock has been called with, in order.
func (m *Mock) Chats() []models.Chat {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.Chat, len(m.chats))
	copy(cp, m.chats)
	return cp
}
