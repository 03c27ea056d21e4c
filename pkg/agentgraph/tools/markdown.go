package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// markdownArgs is the argument shape for format_as_markdown.
type markdownArgs struct {
	Content string `json:"content"`
	Options struct {
		HeadingsLevel int  `json:"headings_level"`
		AddTOC        bool `json:"add_toc"`
	} `json:"options"`
}

// markdownResult is the JSON document returned by format_as_markdown.
type markdownResult struct {
	FormattedContent string `json:"formatted_content"`
	Format           string `json:"format"`
	HeadingsCount    int    `json:"headings_count"`
	ParagraphsCount  int    `json:"paragraphs_count"`
}

var (
	headingPattern   = regexp.MustCompile(`(?m)^(#+)\s+(.+)$`)
	paragraphGap     = regexp.MustCompile(`\n\s*\n`)
	bareFencePattern = regexp.MustCompile("```\n")
	anchorStrip      = regexp.MustCompile(`[^\w-]`)
)

// NewMarkdownFormatter returns the format_as_markdown tool. It imposes
// heading structure on unstructured text and can prepend a table of
// contents.
func NewMarkdownFormatter() tool.Tool {
	return tool.New("format_as_markdown",
		"Format raw text as structured Markdown, optionally with a table of contents. "+
			"Arguments: {content, options:{headings_level, add_toc}}.",
		runMarkdownFormat)
}

func runMarkdownFormat(_ context.Context, args json.RawMessage) (string, error) {
	var in markdownArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("format_as_markdown: decode arguments: %w", err)
	}

	level := in.Options.HeadingsLevel
	if level <= 0 {
		level = 2
	}

	content := strings.TrimSpace(in.Content)
	if !headingPattern.MatchString(content) {
		content = imposeStructure(content, level)
	}
	if in.Options.AddTOC {
		content = insertTOC(content)
	}

	// Fenced blocks without a language get a plaintext hint.
	content = bareFencePattern.ReplaceAllString(content, "```plaintext\n")

	result := markdownResult{
		FormattedContent: content,
		Format:           "markdown",
		HeadingsCount:    len(headingPattern.FindAllString(content, -1)),
		ParagraphsCount:  len(paragraphGap.FindAllString(content, -1)) + 1,
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("format_as_markdown: encode result: %w", err)
	}
	return string(out), nil
}

// imposeStructure adds a title and section headings to heading-free
// text. Short leading lines of later paragraphs become section
// headings at the requested level.
func imposeStructure(content string, level int) string {
	paragraphs := paragraphGap.Split(content, -1)
	if len(paragraphs) <= 3 {
		return content
	}

	var sections []string

	firstLines := strings.SplitN(paragraphs[0], "\n", 2)
	if len(firstLines[0]) < 80 {
		sections = append(sections, "# "+firstLines[0])
		if len(firstLines) > 1 {
			paragraphs[0] = firstLines[1]
		} else {
			paragraphs[0] = ""
		}
	} else {
		sections = append(sections, "# Document")
	}

	marker := strings.Repeat("#", level)
	for i, para := range paragraphs {
		if para == "" {
			continue
		}
		lines := strings.SplitN(para, "\n", 2)
		if i > 0 && len(lines[0]) < 80 {
			sections = append(sections, marker+" "+lines[0])
			if len(lines) > 1 {
				sections = append(sections, lines[1])
			}
			continue
		}
		sections = append(sections, para)
	}

	return strings.Join(sections, "\n\n")
}

// insertTOC builds a table of contents from the headings and inserts
// it after the title.
func insertTOC(content string) string {
	matches := headingPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return content
	}

	toc := []string{"## Table of Contents"}
	for _, m := range matches {
		level := len(m[1])
		text := m[2]
		if level == 1 || text == "Table of Contents" {
			continue
		}
		anchor := anchorStrip.ReplaceAllString(strings.ReplaceAll(strings.ToLower(text), " ", "-"), "")
		indent := strings.Repeat("  ", level-2)
		toc = append(toc, fmt.Sprintf("%s- [%s](#%s)", indent, text, anchor))
	}
	if len(toc) == 1 {
		return content
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			out := append([]string{}, lines[:i+1]...)
			out = append(out, "")
			out = append(out, toc...)
			out = append(out, "")
			out = append(out, lines[i+1:]...)
			return strings.Join(out, "\n")
		}
	}
	return strings.Join(append(toc, "", content), "\n")
}
