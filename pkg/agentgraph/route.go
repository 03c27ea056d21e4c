package agentgraph

// Decision is the outcome of the routing policy for one hop.
type Decision string

// Routing decisions.
const (
	// DecisionContinue takes the node's static transition.
	DecisionContinue Decision = "continue"

	// DecisionTools detours to the tool dispatch node.
	DecisionTools Decision = "tools"
)

// Route decides the next hop from the last history entry: an ai
// message carrying tool calls routes to the dispatch node, anything
// else continues to the static successor. Pure; same state, same
// decision.
func Route(s *SharedState) Decision {
	last, ok := s.LastMessage()
	if ok && last.HasToolCalls() {
		return DecisionTools
	}
	return DecisionContinue
}
