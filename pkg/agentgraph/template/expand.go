package template

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracePattern matches ${varname}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $varname up to the next non-word character,
	// so $task does not match inside $taskList.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// MissingAction specifies how to handle placeholders with no matching
// variable.
type MissingAction int

const (
	// MissingKeep keeps the placeholder as-is. This is the default.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty

	// MissingError makes Expand return an UndefinedVariableError.
	MissingError
)

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets how missing variables are handled.
func WithMissingAction(action MissingAction) Option {
	return func(e *Expander) {
		e.missingAction = action
	}
}

// WithDollarStyle enables or disables bare $var expansion.
// ${var} expansion is always on. Disable the bare style for prompts
// that legitimately contain dollar amounts.
func WithDollarStyle(enabled bool) Option {
	return func(e *Expander) {
		e.dollarStyle = enabled
	}
}

// Expander expands placeholders in prompt text.
// Safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	dollarStyle   bool
}

// NewExpander creates an Expander with the given options.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces placeholders in s with values from vars.
// An error is returned only with MissingError and an unresolved
// variable.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string

	replace := func(match, name string) string {
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
			return match
		default:
			return match
		}
	}

	// ${var} first, it is the more specific pattern.
	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		return replace(match, match[2:len(match)-1])
	})

	if e.dollarStyle {
		result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
			return replace(match, match[1:])
		})
	}

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// ExpandConfig expands placeholders in every string value of m,
// recursing into nested maps. Non-string values are copied as-is.
func (e *Expander) ExpandConfig(m map[string]any, vars map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}

	result := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			expanded, err := e.Expand(val, vars)
			if err != nil {
				return nil, err
			}
			result[k] = expanded
		case map[string]any:
			expanded, err := e.ExpandConfig(val, vars)
			if err != nil {
				return nil, err
			}
			result[k] = expanded
		default:
			result[k] = v
		}
	}
	return result, nil
}

// UndefinedVariableError reports unresolved variables under
// MissingError.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand replaces placeholders in s using default settings, keeping
// placeholders whose variable is missing.
func Expand(s string, vars map[string]any) string {
	result, _ := defaultExpander.Expand(s, vars)
	return result
}

// ExpandConfig expands string values of m using default settings.
func ExpandConfig(m map[string]any, vars map[string]any) map[string]any {
	result, _ := defaultExpander.ExpandConfig(m, vars)
	return result
}
