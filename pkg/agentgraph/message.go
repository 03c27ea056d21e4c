package agentgraph

import (
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/llm"
)

// MessageType tags a history entry.
type MessageType string

// Message types appearing in run history.
const (
	TypeSystem MessageType = "system"
	TypeHuman  MessageType = "human"
	TypeAI     MessageType = "ai"
	TypeTool   MessageType = "tool"
)

// Message is one entry of a run's append-only history.
//
// An ai message may carry tool calls; a tool message carries the id of
// the call it answers. The JSON form is the boundary contract exposed
// in final state documents and checkpoints:
//
//	{"type": "...", "content": "...", "tool_calls": [...], "tool_call_id": "...", "tool_output": "..."}
type Message struct {
	Type       MessageType    `json:"type"`
	Content    string         `json:"content"`
	ToolCalls  []llm.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`

	// ToolOutput duplicates Content on tool messages so boundary
	// consumers can read tool results without switching on type.
	ToolOutput string `json:"tool_output,omitempty"`
}

// SystemMessage creates a system history entry.
func SystemMessage(content string) Message {
	return Message{Type: TypeSystem, Content: content}
}

// HumanMessage creates a human history entry.
func HumanMessage(content string) Message {
	return Message{Type: TypeHuman, Content: content}
}

// AIMessage creates an agent response entry without tool calls.
func AIMessage(content string) Message {
	return Message{Type: TypeAI, Content: content}
}

// AIMessageWithCalls creates an agent response entry carrying tool calls.
func AIMessageWithCalls(content string, calls []llm.ToolCall) Message {
	return Message{Type: TypeAI, Content: content, ToolCalls: calls}
}

// ToolMessage creates a tool result entry answering the given call id.
func ToolMessage(callID, output string) Message {
	return Message{Type: TypeTool, Content: output, ToolCallID: callID, ToolOutput: output}
}

// HasToolCalls reports whether this is an ai message requesting tools.
func (m Message) HasToolCalls() bool {
	return m.Type == TypeAI && len(m.ToolCalls) > 0
}

// Role maps the history entry type to the backend message role.
func (m Message) Role() llm.Role {
	switch m.Type {
	case TypeSystem:
		return llm.RoleSystem
	case TypeAI:
		return llm.RoleAssistant
	case TypeTool:
		return llm.RoleTool
	default:
		return llm.RoleUser
	}
}

// toBackend converts history entries to backend conversation turns.
func toBackend(history []Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		out = append(out, llm.Message{
			Role:       m.Role(),
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
		})
	}
	return out
}
