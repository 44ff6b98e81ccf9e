package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"
	"sync"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/searchchat/internal/agent"
	"github.com/baalimago/searchchat/internal/conversation"
	"github.com/baalimago/searchchat/internal/models"
	"github.com/baalimago/searchchat/internal/utils"
	"github.com/google/uuid"
)

const (
	MissingCredentialInfo = "Please enter your Groq API Key to continue."
	configErrorFormat     = "Failed to initialize the agent. Please check your API key and settings. Error: %v"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrSessionHalted     = errors.New("session halted")
)

// Answerer answers one query, reporting progress on the given channel.
type Answerer interface {
	Answer(ctx context.Context, query string, progress chan<- agent.Event) (string, error)
}

// AgentFactory constructs the agent once the api key is known.
type AgentFactory func(ctx context.Context, apiKey string) (Answerer, error)

type Config struct {
	Factory AgentFactory
	// Raw disables all formatting of messages.
	Raw bool
	// Expand shows the full thought log of the agent, instead of one line per step.
	Expand   bool
	Username string
	// Out defaults to os.Stdout.
	Out io.Writer
}

// Session is one user's interaction lifetime. It owns its conversation and
// agent, nothing is shared between sessions.
type Session struct {
	ID           string
	Conversation *conversation.Conversation

	factory  AgentFactory
	agent    Answerer
	halted   bool
	raw      bool
	expand   bool
	username string
	out      io.Writer
	debug    bool
}

// NewSession seeds a conversation with the greeting and renders it.
func NewSession(conf Config) *Session {
	username := conf.Username
	if username == "" {
		username = "user"
		if currentUser, err := user.Current(); err == nil {
			username = currentUser.Username
		}
	}
	out := conf.Out
	if out == nil {
		out = os.Stdout
	}
	s := &Session{
		ID:           uuid.New().String(),
		Conversation: conversation.New(conversation.Greeting),
		factory:      conf.Factory,
		raw:          conf.Raw,
		expand:       conf.Expand,
		username:     username,
		out:          out,
		debug:        misc.Truthy(os.Getenv("DEBUG")),
	}
	if s.debug {
		ancli.Noticef("new session: %v\n", s.ID)
	}
	s.printMessage(s.Conversation.Last())
	return s
}

// Start constructs the agent using apiKey. Without a key the agent is never
// constructed and ErrMissingCredential is returned. A failing construction
// halts the session and returns a *agent.ConfigurationError.
func (s *Session) Start(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		fmt.Fprintln(s.out, infoStyle(s.raw).Render(MissingCredentialInfo))
		return ErrMissingCredential
	}
	if s.factory == nil {
		return s.halt(errors.New("no agent factory configured"))
	}
	a, err := s.factory(ctx, apiKey)
	if err != nil {
		return s.halt(err)
	}
	s.agent = a
	return nil
}

func (s *Session) halt(err error) error {
	var confErr *agent.ConfigurationError
	if !errors.As(err, &confErr) {
		confErr = &agent.ConfigurationError{Err: err}
	}
	s.halted = true
	s.agent = nil
	fmt.Fprintln(s.out, errorStyle(s.raw).Render(fmt.Sprintf(configErrorFormat, confErr)))
	return confErr
}

// Halted reports if the session refuses further turns.
func (s *Session) Halted() bool {
	return s.halted || s.agent == nil
}

// Submit processes one turn. Input is trimmed, and empty input is no
// submission: false is returned and nothing is appended. Otherwise the user
// message and exactly one assistant message are appended, even if the agent
// fails.
func (s *Session) Submit(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}
	if s.Halted() {
		return false, ErrSessionHalted
	}

	userMsg := conversation.Message{Role: conversation.RoleUser, Content: input}
	if err := s.Conversation.Append(userMsg); err != nil {
		return false, fmt.Errorf("failed to append user message: %w", err)
	}
	s.printMessage(userMsg)

	progress := make(chan agent.Event)
	r := newRenderer(s.out, s.expand, s.raw)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.drain(progress)
	}()
	answer, err := s.agent.Answer(ctx, input, progress)
	close(progress)
	wg.Wait()

	if err == nil && strings.TrimSpace(answer) == "" {
		err = errors.New("agent returned an empty answer")
	}
	content := answer
	if err != nil {
		runtimeErr := &agent.AgentRuntimeError{Err: err}
		if s.debug {
			ancli.Errf("session: %v, turn failed: %v\n", s.ID, err)
		}
		content = runtimeErr.Error()
	}

	assistantMsg := conversation.Message{Role: conversation.RoleAssistant, Content: content}
	if err := s.Conversation.Append(assistantMsg); err != nil {
		return true, fmt.Errorf("failed to append assistant message: %w", err)
	}
	s.printMessage(assistantMsg)
	return true, nil
}

// InputReader returns the next line of user input.
type InputReader func(ctx context.Context) (string, error)

// Run turns until input ends, the user exits or ctx is done. Turns are
// strictly sequential.
func (s *Session) Run(ctx context.Context, read InputReader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, s.promptLabel())
		input, err := read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, utils.ErrUserInitiatedExit) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if _, err := s.Submit(ctx, input); err != nil {
			return err
		}
	}
}

func (s *Session) promptLabel() string {
	if s.raw {
		return "> "
	}
	return utils.Colorize(utils.RoleColor(string(conversation.RoleUser)), s.username) + ": "
}

func (s *Session) printMessage(m conversation.Message) {
	// Echoed by the terminal as it was typed
	if m.Role == conversation.RoleUser {
		return
	}
	err := utils.AttemptPrettyPrint(s.out, models.Message{Role: string(m.Role), Content: m.Content}, s.username, s.raw)
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to print message: %v\n", err))
	}
}
