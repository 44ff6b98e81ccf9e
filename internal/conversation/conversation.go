// Package conversation holds the user facing transcript of one chat session.
//
// A Conversation is append-only: messages are never removed or modified once
// added. It is seeded with a single assistant greeting and lives exactly as long
// as the session owning it.
package conversation

import (
	"errors"
	"sync"
)

// Greeting is the assistant message every conversation starts with.
const Greeting = "Hi, I'm a chatbot who can search the web. How can I help you?"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the transcript. It's a value type, so copies handed out
// by Conversation can't alter the log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

var ErrInvalidRole = errors.New("invalid role")

type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// New conversation seeded with an assistant greeting.
func New(greeting string) *Conversation {
	return &Conversation{
		messages: []Message{{Role: RoleAssistant, Content: greeting}},
	}
}

// Append a message to the end of the transcript.
func (c *Conversation) Append(msg Message) error {
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return ErrInvalidRole
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return nil
}

// All returns a copy of the transcript, in insertion order.
func (c *Conversation) All() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last message of the transcript. A conversation is never empty, the greeting
// is always there.
func (c *Conversation) Last() Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.messages[len(c.messages)-1]
}
