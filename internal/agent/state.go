package agent

import "github.com/firebase/genkit/go/ai"

// State enumerates the loop's phases. A turn always runs
// Prime → Model → (Tools → Model)* → Done.
type State int

const (
	// StatePrime injects the system seed. Runs exactly once per turn.
	StatePrime State = iota
	// StateModel calls the model with the full working history.
	StateModel
	// StateTools executes the pending tool calls of the last reply.
	StateTools
	// StateDone is terminal.
	StateDone
)

// String implements fmt.Stringer for logging.
func (s State) String() string {
	switch s {
	case StatePrime:
		return "prime"
	case StateModel:
		return "model"
	case StateTools:
		return "tools"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// nextState is the loop's single transition function. reply is the
// assistant message produced by the Model state; it is only consulted
// on the Model → Tools/Done branch, which keys solely on whether the
// reply carries tool requests.
func nextState(s State, reply *ai.Message) State {
	switch s {
	case StatePrime:
		return StateModel
	case StateModel:
		if hasToolRequests(reply) {
			return StateTools
		}
		return StateDone
	case StateTools:
		return StateModel
	default:
		return StateDone
	}
}

// hasToolRequests reports whether msg carries at least one tool call.
func hasToolRequests(msg *ai.Message) bool {
	if msg == nil {
		return false
	}
	for _, part := range msg.Content {
		if part != nil && part.ToolRequest != nil {
			return true
		}
	}
	return false
}
