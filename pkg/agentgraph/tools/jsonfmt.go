package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// jsonArgs is the argument shape for format_as_json.
type jsonArgs struct {
	Content string `json:"content"`
	Options struct {
		PrettyPrint *bool `json:"pretty_print"`
	} `json:"options"`
}

// jsonResult is the JSON document returned by format_as_json.
type jsonResult struct {
	FormattedContent string   `json:"formatted_content"`
	Format           string   `json:"format"`
	IsArray          bool     `json:"is_array"`
	ObjectKeys       []string `json:"object_keys,omitempty"`
}

var keyValuePattern = regexp.MustCompile(`^([A-Za-z0-9_\s]*[A-Za-z0-9_]):\s*(.*)$`)

// NewJSONFormatter returns the format_as_json tool. Valid JSON input
// is reformatted; free text is converted to an object by extracting
// "Key: Value" lines.
func NewJSONFormatter() tool.Tool {
	return tool.New("format_as_json",
		"Structure content as JSON, extracting key-value pairs from free text. "+
			"Arguments: {content, options:{pretty_print}}.",
		runJSONFormat)
}

func runJSONFormat(_ context.Context, args json.RawMessage) (string, error) {
	var in jsonArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("format_as_json: decode arguments: %w", err)
	}
	pretty := in.Options.PrettyPrint == nil || *in.Options.PrettyPrint

	// Already valid JSON: just reformat.
	var parsed any
	if err := json.Unmarshal([]byte(in.Content), &parsed); err == nil {
		switch v := parsed.(type) {
		case map[string]any, []any:
			formatted, err := encodeJSON(parsed, pretty)
			if err != nil {
				return "", err
			}
			_, isArray := v.([]any)
			result := jsonResult{
				FormattedContent: formatted,
				Format:           "json",
				IsArray:          isArray,
			}
			if obj, ok := v.(map[string]any); ok {
				result.ObjectKeys = sortedKeys(obj)
			}
			return encodeResult(result)
		}
	}

	data := extractKeyValues(in.Content)
	if len(data) == 0 {
		data = map[string]any{"content": strings.TrimSpace(in.Content)}
	}

	formatted, err := encodeJSON(data, pretty)
	if err != nil {
		return "", err
	}
	return encodeResult(jsonResult{
		FormattedContent: formatted,
		Format:           "json",
		ObjectKeys:       sortedKeys(data),
	})
}

// extractKeyValues pulls "Key: Value" pairs out of free text. Lines
// that match no key continue the previous value.
func extractKeyValues(content string) map[string]any {
	data := make(map[string]any)
	var currentKey string
	var currentValue []string

	flush := func() {
		if currentKey != "" && len(currentValue) > 0 {
			data[currentKey] = strings.TrimSpace(strings.Join(currentValue, "\n"))
		}
		currentValue = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := keyValuePattern.FindStringSubmatch(line); m != nil {
			flush()
			currentKey = strings.TrimSpace(m[1])
			if m[2] != "" {
				currentValue = append(currentValue, m[2])
			}
			continue
		}
		if currentKey != "" {
			currentValue = append(currentValue, line)
		}
	}
	flush()

	return data
}

func encodeJSON(v any, pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("format_as_json: encode content: %w", err)
	}
	return string(data), nil
}

func encodeResult(r jsonResult) (string, error) {
	out, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("format_as_json: encode result: %w", err)
	}
	return string(out), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Stable key order keeps tool output deterministic.
	sort.Strings(keys)
	return keys
}
