package agent

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

const finalAnswerAction = "Final Answer:"

const (
	missingActionAfterThought     = "Invalid Format: Missing 'Action:' after 'Thought:'"
	missingActionInputAfterAction = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	invalidResponse               = "Invalid or incomplete response"
)

var (
	actionRe      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	anyActionRe   = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputRe = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// action is a parsed request to invoke a tool.
type action struct {
	Tool  string
	Input string
	// Log is the raw model output which produced the action.
	Log string
}

// parseOutput turns a model completion into either an action or a final answer.
// Malformed output yields a *RecoverableParsingError.
func parseOutput(text string) (*action, string, error) {
	includesAnswer := strings.Contains(text, finalAnswerAction)
	if m := actionRe.FindStringSubmatch(text); m != nil {
		if includesAnswer {
			return nil, "", &RecoverableParsingError{
				Observation: invalidResponse,
				LLMOutput:   text,
				Reason:      "Parsing LLM output produced both a final answer and a parse-able action:: " + text,
			}
		}
		return &action{
			Tool:  strings.TrimSpace(m[1]),
			Input: toolInput(m[2]),
			Log:   text,
		}, "", nil
	}
	if includesAnswer {
		parts := strings.Split(text, finalAnswerAction)
		return nil, strings.TrimSpace(parts[len(parts)-1]), nil
	}

	if !anyActionRe.MatchString(text) {
		return nil, "", &RecoverableParsingError{Observation: missingActionAfterThought, LLMOutput: text}
	}
	if !actionInputRe.MatchString(text) {
		return nil, "", &RecoverableParsingError{Observation: missingActionInputAfterAction, LLMOutput: text}
	}
	return nil, "", &RecoverableParsingError{Observation: invalidResponse, LLMOutput: text}
}

// toolInput cleans the text after 'Action Input:'. Models at times answer with
// a json object instead of plain text, then the query is picked out of it.
func toolInput(raw string) string {
	in := strings.TrimSpace(raw)
	if !strings.HasPrefix(in, "{") {
		return strings.Trim(in, "\"")
	}
	var obj map[string]any
	if err := unmarshalJSON([]byte(in), &obj); err != nil {
		return in
	}
	if q, ok := obj["query"].(string); ok {
		return q
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return in
}

// unmarshalJSON into v, repairing malformed json on syntax errors.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
