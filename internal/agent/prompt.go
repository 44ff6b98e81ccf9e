package agent

import (
	"fmt"
	"strings"

	"github.com/baalimago/searchchat/internal/tools"
)

const (
	promptPrefix = `Answer the following questions as best you can. You have access to the following tools:`

	formatInstructions = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%v]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question`

	promptSuffix = `Begin!

Question: %v
Thought:%v`

	observationPrefix = "Observation: "
	llmPrefix         = "Thought:"
)

// stopSequence halts the model before it makes up an observation of its own.
const stopSequence = "\nObservation:"

func toolDescriptions(r *tools.Registry) string {
	all := r.All()
	lines := make([]string, 0, len(all))
	for _, name := range r.Names() {
		lines = append(lines, fmt.Sprintf("%v: %v", name, all[name].Specification().Description))
	}
	return strings.Join(lines, "\n")
}

// buildPrompt renders the zero-shot prompt for query, with the steps taken so far.
func buildPrompt(r *tools.Registry, query, scratchpad string) string {
	return strings.Join([]string{
		promptPrefix,
		toolDescriptions(r),
		fmt.Sprintf(formatInstructions, strings.Join(r.Names(), ", ")),
		fmt.Sprintf(promptSuffix, query, scratchpad),
	}, "\n\n")
}

// scratchpadEntry appends the outcome of a step the way the model is expected
// to continue it.
func scratchpadEntry(llmOutput, observation string) string {
	return fmt.Sprintf("%v\n%v%v\n%v", llmOutput, observationPrefix, observation, llmPrefix)
}
