// Package config defines the declarative documents that describe a
// workflow: the agent specifications and the orchestrator layout.
//
// Documents load from JSON or YAML (format detected by file extension)
// and are validated before any graph is built. Validation failures are
// ConfigErrors; they are the only errors the engine raises at build
// time rather than recording in run state.
//
// The package also provides Config, a typed-accessor wrapper around
// map[string]any used for agent knowledge bags, where lookups need
// defaults rather than errors.
package config
