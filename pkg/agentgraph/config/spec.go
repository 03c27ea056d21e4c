package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// AgentSpec declares one workflow agent. Immutable after graph build.
type AgentSpec struct {
	// ID uniquely identifies the agent; it is also the node id in the
	// orchestrator layout.
	ID string `json:"id" yaml:"id"`

	// Name is a display name; not used for routing.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Role and Goal feed the agent's system prompt and task logic.
	Role string `json:"role" yaml:"role"`
	Goal string `json:"goal" yaml:"goal"`

	// Knowledge is the agent's static configuration bag (tone, audience,
	// format, guidelines, ...). Opaque to the engine; role logic reads
	// it with typed accessors.
	Knowledge Config `json:"knowledge,omitempty" yaml:"knowledge,omitempty"`

	// LLM optionally overrides model parameters for this agent's calls.
	LLM *LLMOverrides `json:"llm_config,omitempty" yaml:"llm_config,omitempty"`

	// AllowedTools lists registry identifiers of tools this agent may use.
	AllowedTools []string `json:"allowed_tools,omitempty" yaml:"allowed_tools,omitempty"`
}

// LLMOverrides is the subset of model parameters an agent may override.
// Nil pointer fields mean "keep the backend default".
type LLMOverrides struct {
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty" yaml:"stop,omitempty"`
}

// Edge is a directed transition between two agent nodes.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// OrchestratorSpec declares the workflow layout.
type OrchestratorSpec struct {
	// EntryPoint is the node id where every run starts.
	EntryPoint string `json:"entry_point" yaml:"entry_point"`

	// FinishPoints are node ids expected to be terminal. Advisory:
	// a node is terminal because it has no outgoing edge, not because
	// it is listed here. Accepts a single string or a list.
	FinishPoints StringList `json:"finish_points,omitempty" yaml:"finish_points,omitempty"`

	// Nodes lists the agent ids participating in the workflow.
	Nodes []string `json:"nodes" yaml:"nodes"`

	// Edges are the static transitions. At most one outgoing edge per
	// source is honored; later duplicates are ignored with a warning.
	Edges []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// StringList unmarshals from either a single string or a list of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	var one string
	if err := value.Decode(&one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// Contains reports whether id is in the list.
func (s StringList) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}
