package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/searchchat/internal/models"
	"github.com/baalimago/searchchat/internal/tools"
	"github.com/baalimago/searchchat/internal/vendors"
)

type stubTool struct {
	name  string
	out   string
	err   error
	calls []string
}

func (s *stubTool) Call(ctx context.Context, query string) (string, error) {
	s.calls = append(s.calls, query)
	return s.out, s.err
}

func (s *stubTool) Specification() tools.Specification {
	return tools.Specification{Name: s.name, Description: "stub tool " + s.name}
}

func newTestAgent(t *testing.T, m models.StreamCompleter, tls ...tools.LLMTool) *Agent {
	t.Helper()
	r := tools.NewRegistry()
	for _, tl := range tls {
		r.Set(tl)
	}
	a, err := New(Config{Model: m, Tools: r, MaxIterations: 4, HandleParsingErrors: true})
	if err != nil {
		t.Fatalf("failed to create agent: %v", err)
	}
	return a
}

// collect drains progress in the background, the way a renderer would.
func collect(progress chan Event) func() []Event {
	done := make(chan []Event)
	go func() {
		var evs []Event
		for ev := range progress {
			evs = append(evs, ev)
		}
		done <- evs
	}()
	return func() []Event {
		close(progress)
		return <-done
	}
}

func kinds(evs []Event) []EventKind {
	var ret []EventKind
	for _, ev := range evs {
		if ev.Kind != EventToken {
			ret = append(ret, ev.Kind)
		}
	}
	return ret
}

func TestNew_ConfigurationErrors(t *testing.T) {
	r := tools.NewRegistry()
	r.Set(&stubTool{name: "Search"})
	tests := []struct {
		name string
		conf Config
	}{
		{name: "no model", conf: Config{Tools: r}},
		{name: "no tools", conf: Config{Model: &vendors.Mock{}}},
		{name: "empty tools", conf: Config{Model: &vendors.Mock{}, Tools: tools.NewRegistry()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.conf)
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Fatalf("expected ConfigurationError, got: %v", err)
			}
		})
	}
}

func TestAnswer_DirectFinalAnswer(t *testing.T) {
	m := &vendors.Mock{Responses: []string{" I know this.\nFinal Answer: Paris is the capital of France."}}
	a := newTestAgent(t, m, &stubTool{name: "Search"})

	progress := make(chan Event)
	wait := collect(progress)
	got, err := a.Answer(context.Background(), "What is the capital of France?", progress)
	evs := wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Paris is the capital of France." {
		t.Fatalf("unexpected answer: %q", got)
	}
	if k := kinds(evs); len(k) != 1 || k[0] != EventFinal {
		t.Fatalf("expected only a final event, got: %v", k)
	}

	var tokens strings.Builder
	for _, ev := range evs {
		if ev.Kind == EventToken {
			tokens.WriteString(ev.Text)
		}
	}
	if tokens.String() != m.Responses[0] {
		t.Fatalf("expected tokens to make up the completion, got %q", tokens.String())
	}
}

func TestAnswer_UsesToolThenAnswers(t *testing.T) {
	search := &stubTool{name: "Search", out: "ML is a field of AI."}
	m := &vendors.Mock{Responses: []string{
		" I should search.\nAction: Search\nAction Input: machine learning",
		" I now know the final answer\nFinal Answer: Machine learning is a field of AI.",
	}}
	a := newTestAgent(t, m, search, &stubTool{name: "wikipedia"})

	progress := make(chan Event)
	wait := collect(progress)
	got, err := a.Answer(context.Background(), "What is machine learning?", progress)
	evs := wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Machine learning is a field of AI." {
		t.Fatalf("unexpected answer: %q", got)
	}
	if len(search.calls) != 1 || search.calls[0] != "machine learning" {
		t.Fatalf("expected one search call, got: %v", search.calls)
	}
	want := []EventKind{EventAction, EventObservation, EventFinal}
	if k := kinds(evs); len(k) != len(want) || k[0] != want[0] || k[1] != want[1] || k[2] != want[2] {
		t.Fatalf("expected events %v, got %v", want, k)
	}

	chats := m.Chats()
	if len(chats) != 2 {
		t.Fatalf("expected 2 completions, got %v", len(chats))
	}
	if len(chats[0].Stop) != 1 || chats[0].Stop[0] != "\nObservation:" {
		t.Fatalf("expected observation stop sequence, got %q", chats[0].Stop)
	}
	second := chats[1].Messages[0].Content
	testboil.AssertStringContains(t, second, "Action Input: machine learning\nObservation: ML is a field of AI.\nThought:")
	if !strings.HasSuffix(second, "ML is a field of AI.\nThought:") {
		t.Fatalf("expected the prompt to end on a bare %q, got: %q", "Thought:", second[len(second)-30:])
	}
	testboil.AssertStringContains(t, second, "Question: What is machine learning?")
	testboil.AssertStringContains(t, second, "Search: stub tool Search")
	testboil.AssertStringContains(t, second, "should be one of [Search, wikipedia]")
}

func TestAnswer_ToolErrorIsObservation(t *testing.T) {
	broken := &stubTool{name: "arxiv", err: errors.New("connection refused")}
	m := &vendors.Mock{Responses: []string{
		"Action: arxiv\nAction Input: transformers",
		"Final Answer: Arxiv could not be reached.",
	}}
	a := newTestAgent(t, m, broken)

	progress := make(chan Event)
	wait := collect(progress)
	got, err := a.Answer(context.Background(), "transformers?", progress)
	evs := wait()
	if err != nil {
		t.Fatalf("expected tool failure to be absorbed, got: %v", err)
	}
	if got == "" {
		t.Fatal("expected an answer")
	}
	var obs string
	for _, ev := range evs {
		if ev.Kind == EventObservation {
			obs = ev.Text
		}
	}
	if obs != "ERROR: failed to run tool: arxiv, error: connection refused" {
		t.Fatalf("unexpected observation: %q", obs)
	}
}

func TestAnswer_UnknownTool(t *testing.T) {
	m := &vendors.Mock{Responses: []string{
		"Action: Google\nAction Input: x",
		"Final Answer: done",
	}}
	a := newTestAgent(t, m, &stubTool{name: "Search"})
	if _, err := a.Answer(context.Background(), "q", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.AssertStringContains(t, m.Chats()[1].Messages[0].Content, "Observation: Google is not a valid tool, try one of [Search].")
}

func TestAnswer_RecoversFromParsingErrors(t *testing.T) {
	m := &vendors.Mock{Responses: []string{
		" I think it is 42.",
		"Final Answer: 42",
	}}
	a := newTestAgent(t, m, &stubTool{name: "Search"})

	progress := make(chan Event)
	wait := collect(progress)
	got, err := a.Answer(context.Background(), "meaning of life?", progress)
	evs := wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "42" {
		t.Fatalf("unexpected answer: %q", got)
	}
	if k := kinds(evs); len(k) != 2 || k[0] != EventParseError {
		t.Fatalf("expected parse error then final, got: %v", k)
	}
	testboil.AssertStringContains(t, m.Chats()[1].Messages[0].Content, "I think it is 42.\nObservation: "+missingActionAfterThought)
}

func TestAnswer_ParsingErrorsNotHandled(t *testing.T) {
	r := tools.NewRegistry()
	r.Set(&stubTool{name: "Search"})
	a, err := New(Config{Model: &vendors.Mock{Responses: []string{"gibberish"}}, Tools: r})
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Answer(context.Background(), "q", nil)
	var perr *RecoverableParsingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected RecoverableParsingError, got: %v", err)
	}
}

func TestAnswer_IterationLimit(t *testing.T) {
	m := &vendors.Mock{Responses: []string{"Action: Search\nAction Input: again"}}
	search := &stubTool{name: "Search", out: "nothing useful"}
	a := newTestAgent(t, m, search)
	got, err := a.Answer(context.Background(), "loop forever", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StoppedAnswer {
		t.Fatalf("expected stop message, got %q", got)
	}
	if len(search.calls) != 4 {
		t.Fatalf("expected 4 tool calls, got %v", len(search.calls))
	}
}

func TestAnswer_CompletionError(t *testing.T) {
	m := &vendors.Mock{Err: errors.New("rate limited")}
	a := newTestAgent(t, m, &stubTool{name: "Search"})
	_, err := a.Answer(context.Background(), "q", nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected completion error, got: %v", err)
	}
}

func TestAnswer_IgnoresMadeUpObservation(t *testing.T) {
	search := &stubTool{name: "Search", out: "real"}
	m := &vendors.Mock{Responses: []string{
		"Action: Search\nAction Input: x\nObservation: fake\nFinal Answer: fake",
		"Final Answer: real",
	}}
	a := newTestAgent(t, m, search)
	got, err := a.Answer(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "real" || len(search.calls) != 1 || search.calls[0] != "x" {
		t.Fatalf("unexpected answer: %q, calls: %v", got, search.calls)
	}
}

func TestAnswer_ReturnsOnContextCancel(t *testing.T) {
	a := newTestAgent(t, &vendors.Mock{Responses: []string{"Final Answer: x"}}, &stubTool{name: "Search"})
	testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
		// Nobody reads progress, so the agent may only return through ctx
		_, _ = a.Answer(ctx, "q", make(chan Event))
	}, time.Second)
}
