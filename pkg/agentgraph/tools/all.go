package tools

import "github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"

// All returns one instance of every built-in tool.
func All() []tool.Tool {
	return []tool.Tool{
		NewGrammarChecker(),
		NewReadabilityChecker(),
		NewMarkdownFormatter(),
		NewJSONFormatter(),
	}
}
