package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// grammarArgs is the argument shape for check_grammar.
type grammarArgs struct {
	Content string `json:"content"`
	Options struct {
		Strictness string `json:"strictness"`
		FixIssues  *bool  `json:"fix_issues"`
		CheckStyle *bool  `json:"check_style"`
	} `json:"options"`
}

// grammarIssue describes one detected problem.
type grammarIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Fixable  bool   `json:"fixable"`
}

// grammarResult is the JSON document returned by check_grammar.
type grammarResult struct {
	CorrectedContent string         `json:"corrected_content"`
	IssuesFound      int            `json:"issues_found"`
	Issues           []grammarIssue `json:"issues"`
	Readability      readabilitySummary `json:"readability"`
	FixesApplied     bool           `json:"fixes_applied"`
}

type readabilitySummary struct {
	Assessment        string  `json:"assessment"`
	GradeLevel        float64 `json:"grade_level"`
	WordCount         int     `json:"word_count"`
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

var (
	doubleSpacePattern  = regexp.MustCompile(`  +`)
	grammarWordPattern         = regexp.MustCompile(`\w+`)
	missingSpacePattern = regexp.MustCompile(`([.!?])([a-zA-Z])`)
)

// findRepeatedWords reports words immediately repeated ("the the"),
// compared case-insensitively. Two words count as adjacent only when
// nothing but whitespace separates them.
func findRepeatedWords(content string) []string {
	spans := grammarWordPattern.FindAllStringIndex(content, -1)
	var repeats []string
	for i := 1; i < len(spans); i++ {
		gap := content[spans[i-1][1]:spans[i][0]]
		if strings.TrimSpace(gap) != "" {
			continue
		}
		prev := content[spans[i-1][0]:spans[i-1][1]]
		cur := content[spans[i][0]:spans[i][1]]
		if strings.EqualFold(prev, cur) {
			repeats = append(repeats, prev)
		}
	}
	return repeats
}

// collapseRepeatedWords removes each immediate repeat, keeping the
// first occurrence. A run of three or more collapses to one.
func collapseRepeatedWords(content string) string {
	spans := grammarWordPattern.FindAllStringIndex(content, -1)
	var b strings.Builder
	last := 0
	for i := 1; i < len(spans); i++ {
		gap := content[spans[i-1][1]:spans[i][0]]
		if strings.TrimSpace(gap) != "" {
			continue
		}
		prev := content[spans[i-1][0]:spans[i-1][1]]
		cur := content[spans[i][0]:spans[i][1]]
		if !strings.EqualFold(prev, cur) {
			continue
		}
		b.WriteString(content[last:spans[i-1][1]])
		last = spans[i][1]
	}
	b.WriteString(content[last:])
	return b.String()
}

// commonMisspellings maps frequent misspellings to their corrections.
var commonMisspellings = map[string]string{
	"accomodate": "accommodate",
	"acheive":    "achieve",
	"accross":    "across",
	"aggresive":  "aggressive",
	"apparant":   "apparent",
	"appearence": "appearance",
	"arguement":  "argument",
	"basicly":    "basically",
	"begining":   "beginning",
	"beleive":    "believe",
	"buisness":   "business",
	"calender":   "calendar",
	"catagory":   "category",
	"cheif":      "chief",
	"collegue":   "colleague",
	"comming":    "coming",
	"commited":   "committed",
	"concieve":   "conceive",
}

// NewGrammarChecker returns the check_grammar tool. It detects basic
// grammar and style issues and optionally rewrites the content with
// the fixable ones corrected.
func NewGrammarChecker() tool.Tool {
	return tool.New("check_grammar",
		"Check content for grammar and style issues and optionally fix them. "+
			"Arguments: {content, options:{strictness, fix_issues, check_style}}.",
		runGrammarCheck)
}

func runGrammarCheck(_ context.Context, args json.RawMessage) (string, error) {
	var in grammarArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("check_grammar: decode arguments: %w", err)
	}

	strictness := in.Options.Strictness
	if strictness == "" {
		strictness = "medium"
	}
	fixIssues := in.Options.FixIssues == nil || *in.Options.FixIssues
	checkStyle := in.Options.CheckStyle == nil || *in.Options.CheckStyle

	content := in.Content
	fixed := content
	issues := []grammarIssue{}
	sentences := sentenceSplit(content)

	if n := len(doubleSpacePattern.FindAllString(content, -1)); n > 0 {
		issues = append(issues, grammarIssue{
			Type:     "style",
			Severity: "low",
			Message:  fmt.Sprintf("Found %d instances of double spacing", n),
			Fixable:  true,
		})
		if fixIssues {
			fixed = doubleSpacePattern.ReplaceAllString(fixed, " ")
		}
	}

	if repeats := findRepeatedWords(content); len(repeats) > 0 {
		names := repeats
		if len(names) > 5 {
			names = names[:5]
		}
		issues = append(issues, grammarIssue{
			Type:     "grammar",
			Severity: "medium",
			Message:  "Found repeated words: " + strings.Join(names, ", "),
			Fixable:  true,
		})
		if fixIssues {
			fixed = collapseRepeatedWords(fixed)
		}
	}

	longSentences := 0
	for _, s := range sentences {
		if len(strings.Fields(s)) > 30 {
			longSentences++
		}
	}
	if longSentences > 0 {
		severity := "medium"
		if strictness == "high" {
			severity = "high"
		}
		issues = append(issues, grammarIssue{
			Type:     "style",
			Severity: severity,
			Message:  fmt.Sprintf("Found %d potentially long or run-on sentences", longSentences),
			Fixable:  false,
		})
	}

	if checkStyle && strictness != "low" {
		if n := countPassiveVoice(content); n > 0 {
			issues = append(issues, grammarIssue{
				Type:     "style",
				Severity: "low",
				Message:  fmt.Sprintf("Found approximately %d instances of passive voice", n),
				Fixable:  false,
			})
		}
	}

	var misspelled []string
	for wrong, right := range commonMisspellings {
		pattern := regexp.MustCompile(`(?i)\b` + wrong + `\b`)
		if pattern.MatchString(content) {
			misspelled = append(misspelled, wrong)
			if fixIssues {
				fixed = pattern.ReplaceAllString(fixed, right)
			}
		}
	}
	if len(misspelled) > 0 {
		if len(misspelled) > 5 {
			misspelled = misspelled[:5]
		}
		issues = append(issues, grammarIssue{
			Type:     "spelling",
			Severity: "medium",
			Message:  "Found possible misspellings: " + strings.Join(misspelled, ", "),
			Fixable:  true,
		})
	}

	if n := len(missingSpacePattern.FindAllString(content, -1)); n > 0 {
		issues = append(issues, grammarIssue{
			Type:     "style",
			Severity: "low",
			Message:  fmt.Sprintf("Found %d instances of missing space after punctuation", n),
			Fixable:  true,
		})
		if fixIssues {
			fixed = missingSpacePattern.ReplaceAllString(fixed, "$1 $2")
		}
	}

	result := grammarResult{
		CorrectedContent: fixed,
		IssuesFound:      len(issues),
		Issues:           issues,
		Readability:      summarizeReadability(sentences),
		FixesApplied:     fixIssues,
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("check_grammar: encode result: %w", err)
	}
	return string(out), nil
}

var passivePattern = regexp.MustCompile(`(?i)\b(?:am|is|are|was|were|be|being|been)\s+\w+(?:ed|en)\b`)

func countPassiveVoice(content string) int {
	return len(passivePattern.FindAllString(content, -1))
}

// summarizeReadability computes a simplified Flesch-Kincaid grade with
// a plain-language assessment.
func summarizeReadability(sentences []string) readabilitySummary {
	if len(sentences) == 0 {
		return readabilitySummary{Assessment: "unknown"}
	}

	wordCount := 0
	syllables := 0
	for _, s := range sentences {
		for _, w := range words(s) {
			wordCount++
			syllables += countSyllables(w)
		}
	}
	if wordCount == 0 {
		return readabilitySummary{Assessment: "unknown", SentenceCount: len(sentences)}
	}

	avgSentenceLength := float64(wordCount) / float64(len(sentences))
	avgSyllables := float64(syllables) / float64(wordCount)
	grade := clamp(0.39*avgSentenceLength+11.8*avgSyllables-15.59, 0, 18)

	assessment := "very difficult"
	switch {
	case grade < 6:
		assessment = "very easy"
	case grade < 8:
		assessment = "easy"
	case grade < 10:
		assessment = "fairly easy"
	case grade < 12:
		assessment = "standard"
	case grade < 14:
		assessment = "fairly difficult"
	case grade < 16:
		assessment = "difficult"
	}

	return readabilitySummary{
		Assessment:        assessment,
		GradeLevel:        round1(grade),
		WordCount:         wordCount,
		SentenceCount:     len(sentences),
		AvgSentenceLength: round1(avgSentenceLength),
	}
}
