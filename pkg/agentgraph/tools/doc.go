// Package tools provides built-in content tools for agent workflows.
//
// Each tool accepts a JSON argument object with a "content" field and
// an optional "options" object, and returns a JSON document with the
// processed content plus analysis metadata. Register them on a
// tool.Registry and grant them to agents via allowed_tools:
//
//	reg := tool.NewRegistry()
//	reg.RegisterMany(tools.All()...)
package tools
