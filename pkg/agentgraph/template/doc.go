// Package template expands variable placeholders in prompt text.
//
// Agent goals and knowledge values may reference run inputs with
// ${var} or $var placeholders:
//
//	goal: "Gather findings on: ${task}"
//
// The engine expands them against the run's variables before the
// prompt reaches the model:
//
//	template.Expand("Gather findings on: ${task}", map[string]any{
//	    "task": "quantum computing",
//	})
//	// "Gather findings on: quantum computing"
//
// By default missing variables are kept as-is so a literal "$5" in a
// prompt survives expansion. Use an Expander with WithMissingAction
// to empty them out or fail instead.
package template
