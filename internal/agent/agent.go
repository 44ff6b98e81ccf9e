// Package agent implements a zero-shot ReAct agent: on each step the model
// either picks one of the tools along with an input, or gives a final answer.
// Tool output is fed back as an observation until an answer is reached or the
// iteration limit is hit.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/searchchat/internal/models"
	"github.com/baalimago/searchchat/internal/tools"
)

const (
	DefaultMaxIterations = 15
	StoppedAnswer        = "Agent stopped due to iteration limit or time limit."
)

type Config struct {
	Model               models.StreamCompleter
	Tools               *tools.Registry
	MaxIterations       int
	HandleParsingErrors bool
}

type Agent struct {
	model               models.StreamCompleter
	tools               *tools.Registry
	maxIterations       int
	handleParsingErrors bool
	debug               bool
}

// New agent from conf. A missing model or an empty tool set is a *ConfigurationError.
func New(conf Config) (*Agent, error) {
	if conf.Model == nil {
		return nil, &ConfigurationError{Err: errors.New("no chat model configured")}
	}
	if conf.Tools == nil || conf.Tools.Len() == 0 {
		return nil, &ConfigurationError{Err: errors.New("no tools configured")}
	}
	maxIter := conf.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	return &Agent{
		model:               conf.Model,
		tools:               conf.Tools,
		maxIterations:       maxIter,
		handleParsingErrors: conf.HandleParsingErrors,
		debug:               misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_AGENT")),
	}, nil
}

// Answer query, consulting the tools as the model sees fit. Intermediate events
// are sent on progress, which may be nil. Sends are abandoned once ctx is done.
//
// Tool failures never cause an error, they're observations like any other.
// Errors are returned for failing completions and, unless parsing errors are
// handled, for unparsable model output.
func (a *Agent) Answer(ctx context.Context, query string, progress chan<- Event) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer, err = "", fmt.Errorf("agent panicked: %v", r)
		}
	}()

	var scratchpad strings.Builder
	for step := 0; step < a.maxIterations; step++ {
		prompt := buildPrompt(a.tools, query, scratchpad.String())
		if a.debug {
			ancli.Noticef("agent step: %v, prompt:\n%v\n", step, prompt)
		}
		output, err := a.complete(ctx, step, prompt, progress)
		if err != nil {
			return "", fmt.Errorf("step %v: %w", step, err)
		}

		act, final, err := parseOutput(output)
		if err != nil {
			var perr *RecoverableParsingError
			if !a.handleParsingErrors || !errors.As(err, &perr) {
				return "", err
			}
			if a.debug {
				ancli.Warnf("agent step: %v, recovering from parsing error: %v\n", step, err)
			}
			emit(ctx, progress, Event{Kind: EventParseError, Step: step, Text: perr.Observation})
			scratchpad.WriteString(scratchpadEntry(output, perr.Observation))
			continue
		}
		if act == nil {
			emit(ctx, progress, Event{Kind: EventFinal, Step: step, Text: final})
			return final, nil
		}

		emit(ctx, progress, Event{Kind: EventAction, Step: step, Tool: act.Tool, Input: act.Input})
		observation := tools.Invoke(ctx, a.tools, act.Tool, act.Input)
		emit(ctx, progress, Event{Kind: EventObservation, Step: step, Tool: act.Tool, Text: observation})
		scratchpad.WriteString(scratchpadEntry(act.Log, observation))
	}
	emit(ctx, progress, Event{Kind: EventFinal, Step: a.maxIterations, Text: StoppedAnswer})
	return StoppedAnswer, nil
}

// complete streams one model completion, forwarding each token on progress.
func (a *Agent) complete(ctx context.Context, step int, prompt string, progress chan<- Event) (string, error) {
	completions, err := a.model.StreamCompletions(ctx, models.Chat{
		Messages: []models.Message{{Role: "user", Content: prompt}},
		Stop:     []string{stopSequence},
	})
	if err != nil {
		return "", fmt.Errorf("failed to start completion: %w", err)
	}

	var out strings.Builder
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, open := <-completions:
			if !open {
				return cutAtStop(out.String()), nil
			}
			switch e := ev.(type) {
			case string:
				out.WriteString(e)
				emit(ctx, progress, Event{Kind: EventToken, Step: step, Text: e})
			case error:
				return "", fmt.Errorf("completion failed: %w", e)
			case models.StopEvent:
				return cutAtStop(out.String()), nil
			case models.NoopEvent:
			default:
				if a.debug {
					ancli.Warnf("unexpected completion event: %T\n", e)
				}
			}
		}
	}
}

// cutAtStop drops anything from the stop sequence onwards, for models which
// don't honour it.
func cutAtStop(s string) string {
	if i := strings.Index(s, stopSequence); i >= 0 {
		return s[:i]
	}
	return s
}

func emit(ctx context.Context, progress chan<- Event, ev Event) {
	if progress == nil {
		return
	}
	select {
	case progress <- ev:
	case <-ctx.Done():
	}
}
