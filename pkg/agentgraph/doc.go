// Package agentgraph executes declaratively configured multi-agent
// workflows over shared mutable state.
//
// A workflow is described by two documents: a list of agent
// declarations and an orchestrator layout (entry point, nodes, edges,
// finish points). The Builder validates the documents and produces an
// immutable Workflow of agent nodes plus, when any agent has bound
// tools, a single shared tool dispatch node. A Runner then drives one
// execution per thread id: each agent node derives its task from the
// shared state, invokes the model client, and returns a partial state
// update; when the model requests tool calls, routing detours through
// the dispatch node and returns to the same agent before the next
// static transition is taken.
//
// State is checkpointed after every node execution, keyed by thread id
// and step, so an interrupted run can be inspected or resumed.
//
// Basic usage:
//
//	wf, err := agentgraph.NewBuilder(doc, registry, client).Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := agentgraph.NewRunner(wf)
//	threadID, final := runner.Run(ctx, "Explain the concept of RAG.")
package agentgraph
