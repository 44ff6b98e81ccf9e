package agent

import "fmt"

// ConfigurationError is returned when an agent can't be constructed, such as
// for a missing model or a rejected api key. No partial agent is usable after it.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RecoverableParsingError is returned when the model output can't be parsed
// into an action or a final answer. Observation is fed back to the model when
// parsing errors are handled.
type RecoverableParsingError struct {
	Observation string
	LLMOutput   string
	Reason      string
}

func (e *RecoverableParsingError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("Could not parse LLM output: `%v`", e.LLMOutput)
}

// AgentRuntimeError wraps any unrecovered failure of a turn. Its text is what
// the user sees as the assistant reply.
type AgentRuntimeError struct {
	Err error
}

func (e *AgentRuntimeError) Error() string {
	return fmt.Sprintf("An error occurred: %v", e.Err)
}

func (e *AgentRuntimeError) Unwrap() error {
	return e.Err
}
