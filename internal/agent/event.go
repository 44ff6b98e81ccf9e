package agent

type EventKind int

const (
	// EventToken carries a streamed piece of model output.
	EventToken EventKind = iota
	// EventAction is emitted right before a tool is invoked.
	EventAction
	// EventObservation carries the text a tool returned.
	EventObservation
	// EventParseError carries the observation fed back after unparsable output.
	EventParseError
	// EventFinal carries the final answer.
	EventFinal
)

func (k EventKind) String() string {
	switch k {
	case EventToken:
		return "token"
	case EventAction:
		return "action"
	case EventObservation:
		return "observation"
	case EventParseError:
		return "parse-error"
	case EventFinal:
		return "final"
	}
	return "unknown"
}

// Event is one intermediate step of Answer, pushed on the progress channel.
type Event struct {
	Kind EventKind
	// Step is the zero-indexed iteration of the reasoning loop.
	Step  int
	Text  string
	Tool  string
	Input string
}
